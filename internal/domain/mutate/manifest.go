package mutate

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

const (
	actionMain       = "android.intent.action.MAIN"
	categoryLauncher = "android.intent.category.LAUNCHER"

	// MessagingEventAction marks a FirebaseMessagingService in the manifest.
	MessagingEventAction = "com.google.firebase.MESSAGING_EVENT"
)

// xmlTag locates one element start tag.
type xmlTag struct {
	Start       int // offset of '<'
	End         int // offset of the closing '>'
	SelfClosing bool
}

func (t xmlTag) text(src string) string { return src[t.Start : t.End+1] }

// tagEnd returns the offset of the '>' ending the tag opened at start,
// skipping quoted attribute values.
func tagEnd(src string, start int) int {
	var quote byte
	for i := start + 1; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return -1
}

// findTags returns the start tags of every element with the given name.
func findTags(src, name string) []xmlTag {
	rex := regexp.MustCompile(`<` + regexp.QuoteMeta(name) + `[\s/>]`)
	var tags []xmlTag
	for _, m := range rex.FindAllStringIndex(src, -1) {
		end := tagEnd(src, m[0])
		if end < 0 {
			continue
		}
		tags = append(tags, xmlTag{Start: m[0], End: end, SelfClosing: src[end-1] == '/'})
	}
	return tags
}

// xmlElement is a start tag plus the offset of its closing tag.
type xmlElement struct {
	Open     xmlTag
	CloseTag int // offset of "</name>", or -1 when self-closing
}

func (e xmlElement) inner(src string) string {
	if e.CloseTag < 0 {
		return ""
	}
	return src[e.Open.End+1 : e.CloseTag]
}

func findElements(src, name string) []xmlElement {
	closing := "</" + name + ">"
	var out []xmlElement
	for _, t := range findTags(src, name) {
		if t.SelfClosing {
			out = append(out, xmlElement{Open: t, CloseTag: -1})
			continue
		}
		c := strings.Index(src[t.End:], closing)
		if c < 0 {
			continue
		}
		out = append(out, xmlElement{Open: t, CloseTag: t.End + c})
	}
	return out
}

func attrRex(attr string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|\s)` + regexp.QuoteMeta(attr) + `\s*=\s*"([^"]*)"`)
}

// attrValue returns the unescaped value of attr inside a tag's text.
func attrValue(tag, attr string) (string, bool) {
	m := attrRex(attr).FindStringSubmatch(tag)
	if m == nil {
		return "", false
	}
	return html.UnescapeString(m[1]), true
}

// xmlAttr renders name="value" with value escaped for a quoted attribute.
func xmlAttr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

func applicationTag(src string) (xmlTag, bool) {
	tags := findTags(src, "application")
	if len(tags) == 0 {
		return xmlTag{}, false
	}
	return tags[0], true
}

// ManifestPackage returns the package attribute of the manifest element.
func ManifestPackage(src string) string {
	tags := findTags(src, "manifest")
	if len(tags) == 0 {
		return ""
	}
	v, _ := attrValue(tags[0].text(src), "package")
	return v
}

// ApplicationAttribute returns an attribute of the <application> tag.
func ApplicationAttribute(src, attr string) (string, bool) {
	t, ok := applicationTag(src)
	if !ok {
		return "", false
	}
	return attrValue(t.text(src), attr)
}

// ResolveClassName expands a manifest class reference against the package.
func ResolveClassName(pkg, name string) string {
	switch {
	case name == "":
		return ""
	case strings.HasPrefix(name, "."):
		return pkg + name
	case !strings.Contains(name, "."):
		if pkg == "" {
			return name
		}
		return pkg + "." + name
	}
	return name
}

// RenderMetaData returns a meta-data element with escaped attribute values.
func RenderMetaData(name, value string) string {
	return fmt.Sprintf(`<meta-data %s %s />`, xmlAttr("android:name", name), xmlAttr("android:value", value))
}

// MetaDataValue returns the android:value of a named meta-data element.
func MetaDataValue(src, name string) (string, bool) {
	for _, e := range findElements(src, "meta-data") {
		tag := e.Open.text(src)
		if v, ok := attrValue(tag, "android:name"); ok && v == name {
			return attrValue(tag, "android:value")
		}
	}
	return "", false
}

// EnsureMetaData declares <meta-data android:name=name android:value=value>.
// An existing element with that name is replaced whole when its value
// differs; a missing one goes right after the <application> start tag.
func EnsureMetaData(src, name, value string) string {
	for _, e := range findElements(src, "meta-data") {
		tag := e.Open.text(src)
		if v, ok := attrValue(tag, "android:name"); !ok || v != name {
			continue
		}
		if cur, ok := attrValue(tag, "android:value"); ok && cur == value {
			return src
		}
		end := e.Open.End + 1
		if e.CloseTag >= 0 {
			end = e.CloseTag + len("</meta-data>")
		}
		return src[:e.Open.Start] + RenderMetaData(name, value) + src[end:]
	}
	app, ok := applicationTag(src)
	if !ok || app.SelfClosing {
		return src
	}
	return insertAfterTag(src, app, RenderMetaData(name, value))
}

// insertAfterTag puts text on its own line after a start tag, one level
// deeper than the tag.
func insertAfterTag(src string, t xmlTag, text string) string {
	indent := indentAt(src, t.Start) + indentUnit(src)
	rest := src[t.End+1 : lineEnd(src, t.End)]
	if strings.TrimSpace(rest) == "" {
		return insertAfterLine(src, t.End, indentLines(text, indent))
	}
	return src[:t.End+1] + "\n" + strings.TrimRight(indentLines(text, indent), "\n") + src[t.End+1:]
}

// insertBeforeClose puts text on its own lines before a closing tag at
// offset c, one level deeper than the element start at open.
func insertBeforeClose(src string, open, c int, text string) string {
	indent := indentAt(src, open) + indentUnit(src)
	if strings.TrimSpace(src[lineStart(src, c):c]) == "" {
		return insertBeforeLine(src, c, indentLines(text, indent))
	}
	return src[:c] + "\n" + indentLines(text, indent) + indentAt(src, open) + src[c:]
}

// EnsureApplicationAttribute sets an attribute on the <application> tag.
// On a multi-line tag a new attribute gets its own line after the first
// one, so existing lines stay untouched.
func EnsureApplicationAttribute(src, name, value string) string {
	app, ok := applicationTag(src)
	if !ok {
		return src
	}
	tag := app.text(src)
	if m := attrRex(name).FindStringSubmatchIndex(tag); m != nil {
		if html.UnescapeString(tag[m[2]:m[3]]) == value {
			return src
		}
		return src[:app.Start+m[2]] + html.EscapeString(value) + src[app.Start+m[3]:]
	}
	decl := xmlAttr(name, value)
	firstEnd := lineEnd(src, app.Start)
	if firstEnd < app.End {
		next := firstEnd + 1
		indent := indentAt(src, next)
		return src[:next] + indent + decl + "\n" + src[next:]
	}
	at := app.End
	if app.SelfClosing {
		at--
	}
	return src[:at] + " " + decl + src[at:]
}

// EnsureUsesPermission declares a permission before the <application> tag.
func EnsureUsesPermission(src, permission string) string {
	for _, t := range findTags(src, "uses-permission") {
		if v, ok := attrValue(t.text(src), "android:name"); ok && v == permission {
			return src
		}
	}
	app, ok := applicationTag(src)
	if !ok {
		return src
	}
	line := fmt.Sprintf(`<uses-permission %s />`, xmlAttr("android:name", permission))
	return insertBeforeLine(src, app.Start, indentAt(src, app.Start)+line+"\n")
}

// launcherActivity finds the activity declaring the MAIN/LAUNCHER filter.
func launcherActivity(src string) (xmlElement, bool) {
	for _, e := range findElements(src, "activity") {
		inner := e.inner(src)
		if strings.Contains(inner, actionMain) && strings.Contains(inner, categoryLauncher) {
			return e, true
		}
	}
	return xmlElement{}, false
}

// LauncherActivity returns the android:name of the launcher activity.
func LauncherActivity(src string) (string, bool) {
	e, ok := launcherActivity(src)
	if !ok {
		return "", false
	}
	return attrValue(e.Open.text(src), "android:name")
}

// HasDeepLink reports whether the launcher activity handles scheme, and
// host when host is not empty.
func HasDeepLink(src, scheme, host string) bool {
	e, ok := launcherActivity(src)
	if !ok {
		return false
	}
	inner := e.inner(src)
	for _, d := range findTags(inner, "data") {
		tag := d.text(inner)
		if v, ok := attrValue(tag, "android:scheme"); !ok || v != scheme {
			continue
		}
		if host == "" {
			return true
		}
		if v, ok := attrValue(tag, "android:host"); ok && v == host {
			return true
		}
	}
	return false
}

// RenderDeepLinkFilter returns a VIEW/BROWSABLE intent filter for scheme.
func RenderDeepLinkFilter(scheme, host string) string {
	data := fmt.Sprintf(`<data %s />`, xmlAttr("android:scheme", scheme))
	if host != "" {
		data = fmt.Sprintf(`<data %s %s />`, xmlAttr("android:scheme", scheme), xmlAttr("android:host", host))
	}
	return strings.Join([]string{
		"<intent-filter>",
		`    <action android:name="android.intent.action.VIEW" />`,
		`    <category android:name="android.intent.category.DEFAULT" />`,
		`    <category android:name="android.intent.category.BROWSABLE" />`,
		"    " + data,
		"</intent-filter>",
	}, "\n")
}

// EnsureDeepLinkFilter adds an intent filter for scheme to the launcher
// activity, just before its closing tag.
func EnsureDeepLinkFilter(src, scheme, host string) string {
	if HasDeepLink(src, scheme, host) {
		return src
	}
	e, ok := launcherActivity(src)
	if !ok || e.CloseTag < 0 {
		return src
	}
	return insertBeforeClose(src, e.Open.Start, e.CloseTag, RenderDeepLinkFilter(scheme, host))
}

// ServicesWithAction returns the android:name of every service whose
// intent filter declares action.
func ServicesWithAction(src, action string) []string {
	var names []string
	for _, e := range findElements(src, "service") {
		if !strings.Contains(e.inner(src), action) {
			continue
		}
		if v, ok := attrValue(e.Open.text(src), "android:name"); ok {
			names = append(names, v)
		}
	}
	return names
}

// HasService reports whether a service named name, in any of its manifest
// spellings, is declared.
func HasService(src, pkg, name string) bool {
	want := ResolveClassName(pkg, name)
	for _, t := range findTags(src, "service") {
		if v, ok := attrValue(t.text(src), "android:name"); ok && ResolveClassName(pkg, v) == want {
			return true
		}
	}
	return false
}

// EnsureService registers a non-exported service with an intent filter for
// action, just before </application>.
func EnsureService(src, pkg, name, action string) string {
	if HasService(src, pkg, name) {
		return src
	}
	apps := findElements(src, "application")
	if len(apps) == 0 || apps[0].CloseTag < 0 {
		return src
	}
	block := strings.Join([]string{
		fmt.Sprintf(`<service %s android:exported="false">`, xmlAttr("android:name", name)),
		"    <intent-filter>",
		fmt.Sprintf(`        <action %s />`, xmlAttr("android:name", action)),
		"    </intent-filter>",
		"</service>",
	}, "\n")
	return insertBeforeClose(src, apps[0].Open.Start, apps[0].CloseTag, block)
}

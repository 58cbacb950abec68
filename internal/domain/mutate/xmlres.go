package mutate

import (
	"fmt"
	"strings"
)

const xmlProlog = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

// BackupExclude is one <exclude> entry of a backup rules file.
type BackupExclude struct {
	Domain string
	Path   string
}

func (e BackupExclude) render() string {
	return fmt.Sprintf(`<exclude domain="%s" path="%s" />`, e.Domain, e.Path)
}

// hasExclude reports whether section already excludes path in domain.
func hasExclude(section string, e BackupExclude) bool {
	for _, t := range findTags(section, "exclude") {
		tag := t.text(section)
		d, _ := attrValue(" "+tag, "domain")
		p, _ := attrValue(" "+tag, "path")
		if d == e.Domain && p == e.Path {
			return true
		}
	}
	return false
}

// ensureExcludes inserts the missing excludes into every element named
// container. It reports false when no such element exists.
func ensureExcludes(src, container string, excludes []BackupExclude) (string, bool) {
	elems := findElements(src, container)
	if len(elems) == 0 {
		return src, false
	}
	// back to front so earlier offsets stay valid
	for i := len(elems) - 1; i >= 0; i-- {
		e := elems[i]
		if e.CloseTag < 0 {
			continue
		}
		inner := e.inner(src)
		var missing []string
		for _, x := range excludes {
			if !hasExclude(inner, x) {
				missing = append(missing, x.render())
			}
		}
		if len(missing) > 0 {
			src = insertBeforeClose(src, e.Open.Start, e.CloseTag, strings.Join(missing, "\n"))
		}
	}
	return src, true
}

func renderExcludes(excludes []BackupExclude) string {
	lines := make([]string, len(excludes))
	for i, x := range excludes {
		lines[i] = x.render()
	}
	return strings.Join(lines, "\n")
}

// EnsureFullBackupExcludes makes a <full-backup-content> file exclude
// every entry. Empty input yields a complete new file.
func EnsureFullBackupExcludes(src string, excludes ...BackupExclude) string {
	if strings.TrimSpace(src) == "" {
		return xmlProlog + "<full-backup-content>\n" +
			indentLines(renderExcludes(excludes), "    ") +
			"</full-backup-content>\n"
	}
	out, _ := ensureExcludes(src, "full-backup-content", excludes)
	return out
}

var extractionSections = []string{"cloud-backup", "device-transfer"}

// EnsureDataExtractionExcludes makes a <data-extraction-rules> file exclude
// every entry from both cloud backup and device transfer. Missing sections
// are added. Empty input yields a complete new file.
func EnsureDataExtractionExcludes(src string, excludes ...BackupExclude) string {
	if strings.TrimSpace(src) == "" {
		var b strings.Builder
		b.WriteString(xmlProlog + "<data-extraction-rules>\n")
		for _, s := range extractionSections {
			b.WriteString(indentLines("<"+s+">\n"+indentLines(renderExcludes(excludes), "    ")+"</"+s+">", "    "))
		}
		b.WriteString("</data-extraction-rules>\n")
		return b.String()
	}
	for _, s := range extractionSections {
		var ok bool
		src, ok = ensureExcludes(src, s, excludes)
		if ok {
			continue
		}
		root := findElements(src, "data-extraction-rules")
		if len(root) == 0 || root[0].CloseTag < 0 {
			return src
		}
		section := "<" + s + ">\n" + indentLines(renderExcludes(excludes), "    ") + "</" + s + ">"
		src = insertBeforeClose(src, root[0].Open.Start, root[0].CloseTag, section)
	}
	return src
}

// ResourceItem is a <item> entry of a values resource file.
type ResourceItem struct {
	Type string
	Name string
}

func (r ResourceItem) render() string {
	return fmt.Sprintf(`<item name="%s" type="%s" />`, r.Name, r.Type)
}

func hasResourceItem(src string, r ResourceItem) bool {
	for _, t := range findTags(src, "item") {
		tag := t.text(src)
		n, _ := attrValue(tag, "name")
		typ, _ := attrValue(tag, "type")
		if n == r.Name && typ == r.Type {
			return true
		}
	}
	for _, t := range findTags(src, r.Type) {
		if n, _ := attrValue(t.text(src), "name"); n == r.Name {
			return true
		}
	}
	return false
}

// EnsureResourceItems declares every item inside <resources>. Empty input
// yields a complete new file.
func EnsureResourceItems(src string, items ...ResourceItem) string {
	var missing []string
	for _, r := range items {
		if !hasResourceItem(src, r) {
			missing = append(missing, r.render())
		}
	}
	if strings.TrimSpace(src) == "" {
		return xmlProlog + "<resources>\n" + indentLines(strings.Join(missing, "\n"), "    ") + "</resources>\n"
	}
	if len(missing) == 0 {
		return src
	}
	res := findElements(src, "resources")
	if len(res) == 0 || res[0].CloseTag < 0 {
		return src
	}
	return insertBeforeClose(src, res[0].Open.Start, res[0].CloseTag, strings.Join(missing, "\n"))
}

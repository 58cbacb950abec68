package mutate

import (
	"fmt"
	"regexp"
	"strings"
)

// GradleDependency is a Maven coordinate declared in a Gradle build file.
type GradleDependency struct {
	Configuration string
	Group         string
	Artifact      string
	Version       string
}

// Coordinate returns group:artifact:version.
func (d GradleDependency) Coordinate() string {
	c := d.Group + ":" + d.Artifact
	if d.Version != "" {
		c += ":" + d.Version
	}
	return c
}

// Render returns the declaration line for the DSL of lang.
func (d GradleDependency) Render(lang Lang) string {
	conf := d.Configuration
	if conf == "" {
		conf = "implementation"
	}
	if lang == LangKotlinScript {
		return fmt.Sprintf("%s(%q)", conf, d.Coordinate())
	}
	return fmt.Sprintf("%s '%s'", conf, d.Coordinate())
}

func (d GradleDependency) rex() *regexp.Regexp {
	return regexp.MustCompile(`(['"])` + regexp.QuoteMeta(d.Group+":"+d.Artifact) + `(?::([^'"\s]*))?['"]`)
}

// find matches d outside comments.
func (d GradleDependency) find(src string, lang Lang) []int {
	return d.rex().FindStringSubmatchIndex(blankComments(src, lang))
}

// GradleDependencyVersion returns the declared version of group:artifact.
// The boolean is false when the dependency is not declared; commented-out
// declarations do not count.
func GradleDependencyVersion(src string, lang Lang, d GradleDependency) (string, bool) {
	m := d.find(src, lang)
	if m == nil {
		return "", false
	}
	if m[4] < 0 {
		return "", true
	}
	return src[m[4]:m[5]], true
}

// IsVersionExpression reports whether a declared version is resolved by the
// build, like ${SMARTECH_BASE_SDK_VERSION} or $sdkVersion.
func IsVersionExpression(v string) bool {
	return strings.Contains(v, "$")
}

// GradleDependencySatisfied reports whether d is declared with its version
// or with a version expression the build resolves.
func GradleDependencySatisfied(src string, lang Lang, d GradleDependency) bool {
	v, ok := GradleDependencyVersion(src, lang, d)
	return ok && (d.Version == "" || v == d.Version || IsVersionExpression(v))
}

// EnsureGradleDependency declares d in the top-level dependencies block.
// An existing declaration of the same group and artifact keeps its line and
// only has a literal version replaced; a version expression is left alone.
// A file without a top-level dependencies block gets one appended.
func EnsureGradleDependency(src string, lang Lang, d GradleDependency) string {
	if m := d.find(src, lang); m != nil {
		if d.Version == "" {
			return src
		}
		if m[4] >= 0 {
			if cur := src[m[4]:m[5]]; cur == d.Version || IsVersionExpression(cur) {
				return src
			}
			return src[:m[4]] + d.Version + src[m[5]:]
		}
		// declared without a version; add it before the closing quote
		closeQuote := m[1] - 1
		return src[:closeQuote] + ":" + d.Version + src[closeQuote:]
	}
	line := d.Render(lang)
	if b, ok := findNamedBlock(src, lang, "dependencies", 0); ok {
		return insertIntoBlock(src, b, []string{line})
	}
	return appendBlock(src, "dependencies {\n"+indentUnit(src)+line+"\n}\n")
}

// HasMavenRepository reports whether url is declared anywhere in src.
func HasMavenRepository(src, url string) bool {
	return strings.Contains(src, url)
}

// RenderMavenRepository returns the maven repository declaration for lang.
func RenderMavenRepository(lang Lang, url string) string {
	if lang == LangKotlinScript {
		return fmt.Sprintf("maven { url = uri(%q) }", url)
	}
	return fmt.Sprintf("maven { url '%s' }", url)
}

// EnsureMavenRepository declares a maven repository inside the nested
// block named by path, e.g. allprojects > repositories. Without that
// block src is returned unchanged.
func EnsureMavenRepository(src string, lang Lang, url string, path ...string) string {
	if HasMavenRepository(src, url) {
		return src
	}
	b, ok := findNestedBlock(src, lang, path...)
	if !ok {
		return src
	}
	return insertIntoBlock(src, b, []string{RenderMavenRepository(lang, url)})
}

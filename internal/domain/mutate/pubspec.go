package mutate

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openkraft/sdkweave/internal/domain"
)

var (
	pubspecSectionRex = regexp.MustCompile(`(?m)^dependencies:[ \t]*(?:#[^\r\n]*)?\r?$`)
	topLevelKeyRex    = regexp.MustCompile(`(?m)^[^\s#]`)
)

type pubspec struct {
	Name         string         `yaml:"name"`
	Dependencies map[string]any `yaml:"dependencies"`
}

func parsePubspec(src string) (pubspec, error) {
	var p pubspec
	if err := yaml.Unmarshal([]byte(src), &p); err != nil {
		return p, &domain.MalformedError{Format: "yaml", Err: err}
	}
	return p, nil
}

// PubspecDependency returns the version constraint of a hosted dependency.
// Path, git and sdk dependencies report an empty version.
func PubspecDependency(src, name string) (string, bool, error) {
	p, err := parsePubspec(src)
	if err != nil {
		return "", false, err
	}
	v, ok := p.Dependencies[name]
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

// EnsurePubspecDependency sets name to version under dependencies. An
// existing hosted entry only has its constraint replaced; path, git and
// sdk entries are left alone. A new entry goes right after the
// dependencies: line. Unparsable input yields a *domain.MalformedError.
func EnsurePubspecDependency(src, name, version string) (string, error) {
	p, err := parsePubspec(src)
	if err != nil {
		return src, err
	}
	if v, ok := p.Dependencies[name]; ok {
		cur, isString := v.(string)
		if !isString || cur == version {
			return src, nil
		}
		return replacePubspecVersion(src, name, version), nil
	}

	nl := newline(src)
	loc := pubspecSectionRex.FindStringIndex(src)
	if loc == nil {
		return appendBlock(src, withNewline(fmt.Sprintf("dependencies:\n  %s: %s\n", name, version), nl)), nil
	}
	indent := "  "
	if next := lineEnd(src, loc[0]) + 1; next < len(src) {
		if ind := indentAt(src, next); ind != "" {
			indent = ind
		}
	}
	return insertAfterLine(src, loc[0], fmt.Sprintf("%s%s: %s%s", indent, name, version, nl)), nil
}

// replacePubspecVersion rewrites the constraint of name inside the
// dependencies section only.
func replacePubspecVersion(src, name, version string) string {
	loc := pubspecSectionRex.FindStringIndex(src)
	if loc == nil {
		return src
	}
	start := lineEnd(src, loc[0])
	end := len(src)
	if start+1 < len(src) {
		if m := topLevelKeyRex.FindStringIndex(src[start+1:]); m != nil {
			end = start + 1 + m[0]
		}
	}
	rex := regexp.MustCompile(`(?m)^([ \t]+` + regexp.QuoteMeta(name) + `:[ \t]*)([^\s#][^#\r\n]*?)([ \t]*(?:#[^\r\n]*)?)\r?$`)
	section := src[start:end]
	m := rex.FindStringSubmatchIndex(section)
	if m == nil {
		return src
	}
	quoted := strings.HasPrefix(section[m[4]:m[5]], `"`) || strings.HasPrefix(section[m[4]:m[5]], `'`)
	v := version
	if quoted {
		v = section[m[4]:m[4]+1] + version + section[m[4]:m[4]+1]
	}
	return src[:start+m[4]] + v + src[start+m[5]:]
}

package mutate

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/openkraft/sdkweave/internal/domain"
)

func malformedJSON(err error) error {
	return &domain.MalformedError{Format: "json", Err: err}
}

// PackageDependency returns the version range of name in a package.json
// section such as "dependencies".
func PackageDependency(src, section, name string) (string, bool, error) {
	data := []byte(src)
	if err := validateJSONObject(data); err != nil {
		return "", false, err
	}
	v, err := jsonparser.GetString(data, section, name)
	if err != nil {
		return "", false, nil
	}
	return v, true, nil
}

func validateJSONObject(data []byte) error {
	err := jsonparser.ObjectEach(data, func(_ []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
		return nil
	})
	if err != nil {
		return malformedJSON(err)
	}
	return nil
}

// EnsurePackageDependency sets name to version in a package.json section.
// An existing entry only has its version string replaced; a new one opens
// the section on its own line, which is created when missing. Unparsable input
// yields a *domain.MalformedError.
func EnsurePackageDependency(src, section, name, version string) (string, error) {
	data := []byte(src)
	if err := validateJSONObject(data); err != nil {
		return src, err
	}

	if raw, typ, end, err := jsonparser.Get(data, section, name); err == nil {
		if typ != jsonparser.String {
			return src, nil
		}
		if string(raw) == version {
			return src, nil
		}
		start := end - 1 - len(raw)
		return src[:start] + version + src[end-1:], nil
	}

	entry := fmt.Sprintf("%q: %q", name, version)
	if raw, typ, end, err := jsonparser.Get(data, section); err == nil {
		if typ != jsonparser.Object {
			return src, malformedJSON(fmt.Errorf("%s is not an object", section))
		}
		open := end - len(raw)
		if first, ok := firstMemberLine(src, open, end-1); ok {
			return src[:first] + indentAt(src, first) + entry + ",\n" + src[first:], nil
		}
		return insertJSONMember(src, open, end-1, entry), nil
	}

	rootOpen := bytes.IndexByte(data, '{')
	rootClose := bytes.LastIndexByte(data, '}')
	member := fmt.Sprintf("%q: {\n%s%s\n}", section, indentUnit(src), entry)
	return insertJSONMember(src, rootOpen, rootClose, member), nil
}

// firstMemberLine returns the start of the line holding the first member
// of the object spanning [open, closeAt], when that member starts its own
// line.
func firstMemberLine(src string, open, closeAt int) (int, bool) {
	inner := src[open+1 : closeAt]
	skip := len(inner) - len(strings.TrimLeft(inner, " \t\r\n"))
	if skip == len(inner) {
		return 0, false
	}
	first := open + 1 + skip
	if lineStart(src, first) == lineStart(src, open) {
		return 0, false
	}
	return lineStart(src, first), true
}

// insertJSONMember appends member to the object spanning [open, closeAt].
func insertJSONMember(src string, open, closeAt int, member string) string {
	inner := src[open+1 : closeAt]
	trimmed := strings.TrimRight(inner, " \t\r\n")
	closeIndent := indentAt(src, closeAt)
	if lineStart(src, closeAt) != lineStart(src, open) && strings.TrimSpace(src[lineStart(src, closeAt):closeAt]) != "" {
		closeIndent = indentAt(src, open)
	}

	if strings.TrimSpace(trimmed) == "" {
		indent := closeIndent + indentUnit(src)
		return src[:open+1] + "\n" + indent + indentContinuation(member, indent) + "\n" + closeIndent + src[closeAt:]
	}
	lastEnd := open + 1 + len(trimmed)
	indent := indentAt(src, lastEnd-1)
	if lineStart(src, lastEnd-1) == lineStart(src, open) {
		indent = closeIndent + indentUnit(src)
	}
	return src[:lastEnd] + ",\n" + indent + indentContinuation(member, indent) + src[lastEnd:]
}

// indentContinuation indents every line of a multi-line member after the
// first.
func indentContinuation(member, indent string) string {
	return strings.ReplaceAll(member, "\n", "\n"+indent)
}

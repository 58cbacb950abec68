package mutate

import (
	"regexp"
	"strings"
)

func propertyRex(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*[=:][ \t]*([^\r\n]*?)[ \t]*\r?$`)
}

// PropertyValue returns the value of key in a .properties file.
func PropertyValue(src, key string) (string, bool) {
	m := propertyRex(key).FindStringSubmatch(src)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EnsureProperty sets key to value. An existing entry only has its value
// replaced; a missing one is appended with the file's line ending.
func EnsureProperty(src, key, value string) string {
	m := propertyRex(key).FindStringSubmatchIndex(src)
	if m == nil {
		nl := newline(src)
		if src != "" && !strings.HasSuffix(src, "\n") {
			src += nl
		}
		return src + key + "=" + value + nl
	}
	if src[m[2]:m[3]] == value {
		return src
	}
	return src[:m[2]] + value + src[m[3]:]
}

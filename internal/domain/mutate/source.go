package mutate

import (
	"regexp"
	"strings"
)

var (
	sourcePackageRex = regexp.MustCompile(`(?m)^[ \t]*package[ \t]+([\w.]+)`)
	javaExtendsRex   = regexp.MustCompile(`\bclass\s+(\w+)(?:<[^>{]*>)?\s+extends\s+([\w.]+)`)
	kotlinExtendsRex = regexp.MustCompile(`\bclass\s+(\w+)(?:\s*(?:@\w+\s*)?(?:\w+\s+)?constructor)?(?:\s*\([^)]*\))?\s*:\s*([\w.]+)`)
	classNameRex     = regexp.MustCompile(`\b(?:class|object)\s+(\w+)`)
)

// SourcePackage returns the package declared by a Java or Kotlin file.
func SourcePackage(src string) string {
	if m := sourcePackageRex.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	return ""
}

// FirstClassName returns the name of the first class or object in src.
func FirstClassName(src string, lang Lang) string {
	mask := codeMask(src, lang)
	for _, m := range classNameRex.FindAllStringSubmatchIndex(src, -1) {
		if mask[m[0]] {
			return src[m[2]:m[3]]
		}
	}
	return ""
}

// SuperClass returns the class src's first class extends, without its
// package qualifier.
func SuperClass(src string, lang Lang) (string, bool) {
	rex := javaExtendsRex
	if lang.IsKotlin() {
		rex = kotlinExtendsRex
	}
	mask := codeMask(src, lang)
	for _, m := range rex.FindAllStringSubmatchIndex(src, -1) {
		if !mask[m[0]] {
			continue
		}
		base := src[m[4]:m[5]]
		if i := strings.LastIndexByte(base, '.'); i >= 0 {
			base = base[i+1:]
		}
		return base, true
	}
	return "", false
}

// ExtendsAny reports whether src's first class extends one of bases.
func ExtendsAny(src string, lang Lang, bases ...string) bool {
	sup, ok := SuperClass(src, lang)
	if !ok {
		return false
	}
	for _, b := range bases {
		if sup == b {
			return true
		}
	}
	return false
}

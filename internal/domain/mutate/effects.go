package mutate

import (
	"regexp"
	"strings"
)

// EffectBehavior is one independently toggled part of a React effect.
type EffectBehavior struct {
	// Marker proves the behavior is already wired somewhere in the file.
	Marker  string
	Setup   string
	Cleanup string
}

var (
	appComponentRex = regexp.MustCompile(`(?m)^(?:export\s+default\s+|export\s+)?(?:function\s+App\b|const\s+App\b)`)
	returnParenRex  = regexp.MustCompile(`\breturn\s*\(`)
)

// MissingBehaviors filters out the behaviors whose marker is in src.
func MissingBehaviors(src string, behaviors []EffectBehavior) []EffectBehavior {
	var out []EffectBehavior
	for _, b := range behaviors {
		if !strings.Contains(src, b.Marker) {
			out = append(out, b)
		}
	}
	return out
}

// RenderEffect renders one useEffect block combining the behaviors.
func RenderEffect(behaviors []EffectBehavior, unit string) string {
	var body []string
	var cleanup []string
	for _, b := range behaviors {
		body = append(body, strings.TrimRight(b.Setup, "\n"))
		if b.Cleanup != "" {
			cleanup = append(cleanup, strings.TrimRight(b.Cleanup, "\n"))
		}
	}
	text := "useEffect(() => {\n" + indentLines(strings.Join(body, "\n"), unit)
	if len(cleanup) > 0 {
		text += indentLines("return () => {\n"+indentLines(strings.Join(cleanup, "\n"), unit)+"};", unit)
	}
	return text + "}, []);"
}

// EnsureEffectBlock adds one useEffect combining the missing behaviors.
// It goes before the App component's `return (`, else the first one in the
// file, else at the end of the file.
func EnsureEffectBlock(src string, lang Lang, behaviors []EffectBehavior) string {
	missing := MissingBehaviors(src, behaviors)
	if len(missing) == 0 {
		return src
	}
	unit := indentUnit(src)
	effect := RenderEffect(missing, unit)

	if at := effectAnchor(src, lang); at >= 0 {
		return insertBeforeLine(src, at, indentLines(effect, indentAt(src, at))+"\n")
	}
	return appendBlock(src, effect+"\n")
}

func effectAnchor(src string, lang Lang) int {
	mask := codeMask(src, lang)
	from := 0
	if loc := appComponentRex.FindStringIndex(src); loc != nil {
		from = loc[0]
	}
	for _, start := range []int{from, 0} {
		for _, m := range returnParenRex.FindAllStringIndex(src[start:], -1) {
			if mask[start+m[0]] {
				return start + m[0]
			}
		}
	}
	return -1
}

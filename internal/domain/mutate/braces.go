package mutate

import (
	"regexp"
	"strings"
)

// codeMask marks which bytes of src are code, as opposed to comments or
// string literals, for the given language.
func codeMask(src string, lang Lang) []bool {
	syn := lang.syntax()
	mask := make([]bool, len(src))
	i := 0
	for i < len(src) {
		switch {
		case syn.lineComment != "" && strings.HasPrefix(src[i:], syn.lineComment):
			i = lineEnd(src, i)
			continue
		case syn.blockComments && strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return mask
			}
			i += end + 4
			continue
		case syn.quotes != "" && strings.IndexByte(syn.quotes, src[i]) >= 0:
			i = skipString(src, i, syn.tripleQuotes)
			continue
		}
		mask[i] = true
		i++
	}
	return mask
}

// blankComments replaces the comments of src with spaces, keeping offsets
// and line breaks.
func blankComments(src string, lang Lang) string {
	syn := lang.syntax()
	b := []byte(src)
	blank := func(from, to int) {
		for j := from; j < to; j++ {
			if b[j] != '\n' && b[j] != '\r' {
				b[j] = ' '
			}
		}
	}
	i := 0
	for i < len(src) {
		switch {
		case syn.lineComment != "" && strings.HasPrefix(src[i:], syn.lineComment):
			end := lineEnd(src, i)
			blank(i, end)
			i = end
		case syn.blockComments && strings.HasPrefix(src[i:], "/*"):
			end := len(src)
			if j := strings.Index(src[i+2:], "*/"); j >= 0 {
				end = i + j + 4
			}
			blank(i, end)
			i = end
		case syn.quotes != "" && strings.IndexByte(syn.quotes, src[i]) >= 0:
			i = skipString(src, i, syn.tripleQuotes)
		default:
			i++
		}
	}
	return string(b)
}

// skipString returns the offset just past the string literal opening at i.
func skipString(src string, i int, triple bool) int {
	q := src[i]
	if triple && strings.HasPrefix(src[i:], strings.Repeat(string(q), 3)) {
		end := strings.Index(src[i+3:], strings.Repeat(string(q), 3))
		if end < 0 {
			return len(src)
		}
		return i + 3 + end + 3
	}
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j + 1
		case '\n':
			if q != '`' {
				return j + 1
			}
		}
	}
	return len(src)
}

// matchBrace returns the offset of the brace closing the one at open, or -1.
func matchBrace(src string, mask []bool, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		if !mask[i] {
			continue
		}
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// depthAt returns the brace nesting depth at offset i.
func depthAt(src string, mask []bool, i int) int {
	depth := 0
	for j := 0; j < i && j < len(src); j++ {
		if !mask[j] {
			continue
		}
		switch src[j] {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

// block is a brace-delimited region: Open is the offset of '{' and Close
// the offset of the matching '}'.
type block struct {
	Start int
	Open  int
	Close int
}

// body returns the text between the braces.
func (b block) body(src string) string { return src[b.Open+1 : b.Close] }

// findBlocks returns every block whose header matches rex and starts in
// code at the given depth, or at any depth when depth < 0. The match must
// end with the opening brace. When rex has a capture group, the block
// starts at the group instead of the whole match.
func findBlocks(src string, lang Lang, rex *regexp.Regexp, depth int) []block {
	mask := codeMask(src, lang)
	var out []block
	for _, m := range rex.FindAllStringSubmatchIndex(src, -1) {
		start := m[0]
		if len(m) >= 4 && m[2] >= 0 {
			start = m[2]
		}
		open := m[1] - 1
		if start >= len(src) || !mask[start] || src[open] != '{' || !mask[open] {
			continue
		}
		if depth >= 0 && depthAt(src, mask, start) != depth {
			continue
		}
		closeAt := matchBrace(src, mask, open)
		if closeAt < 0 {
			continue
		}
		out = append(out, block{Start: start, Open: open, Close: closeAt})
	}
	return out
}

func namedBlockRex(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\w.])(` + regexp.QuoteMeta(name) + `)\s*\{`)
}

// findNamedBlock finds the first `name {` block at the given depth.
func findNamedBlock(src string, lang Lang, name string, depth int) (block, bool) {
	blocks := findBlocks(src, lang, namedBlockRex(name), depth)
	if len(blocks) == 0 {
		return block{}, false
	}
	return blocks[0], true
}

// findNestedBlock walks a path of named blocks, e.g. allprojects >
// repositories, each nested directly inside the previous.
func findNestedBlock(src string, lang Lang, path ...string) (block, bool) {
	lo, hi := 0, len(src)
	var found block
	for depth, name := range path {
		ok := false
		for _, b := range findBlocks(src, lang, namedBlockRex(name), depth) {
			if b.Start >= lo && b.Close <= hi {
				found, ok = b, true
				break
			}
		}
		if !ok {
			return block{}, false
		}
		lo, hi = found.Open+1, found.Close
	}
	return found, true
}

// insertIntoBlock inserts lines, indented one level deeper than the block
// header, just before the block's closing brace.
func insertIntoBlock(src string, b block, lines []string) string {
	unit := indentUnit(src)
	indent := indentAt(src, b.Start) + unit
	var text strings.Builder
	for _, l := range lines {
		text.WriteString(indent + l + "\n")
	}
	closeLine := lineStart(src, b.Close)
	if strings.TrimSpace(src[closeLine:b.Close]) != "" {
		// closing brace shares a line with code, e.g. `deps { a }`
		return src[:b.Close] + "\n" + text.String() + indentAt(src, b.Start) + src[b.Close:]
	}
	return src[:closeLine] + text.String() + src[closeLine:]
}

package mutate

import "strings"

// lineStart returns the offset of the first byte of the line holding i.
func lineStart(src string, i int) int {
	if i > len(src) {
		i = len(src)
	}
	return strings.LastIndexByte(src[:i], '\n') + 1
}

// lineEnd returns the offset of the newline ending the line holding i, or
// len(src) on the last line.
func lineEnd(src string, i int) int {
	if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(src)
}

// newline returns the line ending src already uses.
func newline(src string) string {
	if strings.Contains(src, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// withNewline rewrites the newlines of block to nl.
func withNewline(block, nl string) string {
	if nl == "\n" {
		return block
	}
	return strings.ReplaceAll(block, "\n", nl)
}

// indentAt returns the leading whitespace of the line holding i.
func indentAt(src string, i int) string {
	start := lineStart(src, i)
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[start:end]
}

// insertAfterLine inserts block, a newline-terminated run of lines, after
// the line holding i.
func insertAfterLine(src string, i int, block string) string {
	end := lineEnd(src, i)
	if end == len(src) {
		return src + "\n" + block
	}
	return src[:end+1] + block + src[end+1:]
}

// insertBeforeLine inserts block before the line holding i.
func insertBeforeLine(src string, i int, block string) string {
	start := lineStart(src, i)
	return src[:start] + block + src[start:]
}

// appendBlock appends block to src, separated by a blank line.
func appendBlock(src, block string) string {
	if src == "" {
		return block
	}
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	if !strings.HasSuffix(src, "\n\n") {
		src += "\n"
	}
	return src + block
}

// indentUnit guesses the project's indentation step from src.
func indentUnit(src string) string {
	smallest := 0
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(line, "\t") {
			return "\t"
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if n == 0 || n == len(line) {
			continue
		}
		if smallest == 0 || n < smallest {
			smallest = n
		}
	}
	if smallest == 2 || smallest == 4 {
		return strings.Repeat(" ", smallest)
	}
	return "    "
}

// indentLines prefixes every non-empty line of text with indent and
// terminates the result with a newline.
func indentLines(text, indent string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			b.WriteString(indent)
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// normalizeSpace collapses whitespace so detection ignores formatting.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// containsCode reports whether needle occurs in haystack once whitespace
// is normalized on both sides.
func containsCode(haystack, needle string) bool {
	return strings.Contains(normalizeSpace(haystack), normalizeSpace(needle))
}

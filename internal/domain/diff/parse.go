package diff

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoHeader   = errors.New("diff has no file header")
	ErrBadHunk    = errors.New("malformed hunk")
	hunkHeaderRex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
)

// Parse reads a single-file unified diff as produced by Synthesize.
func Parse(text string) (*Patch, error) {
	lines := strings.Split(text, "\n")
	p := &Patch{}
	found := false
	i := 0
	for ; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "--- ") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ ") {
			p.OldPath = stripPrefix(lines[i][4:], "a/")
			p.NewPath = stripPrefix(lines[i+1][4:], "b/")
			found = true
			i += 2
			break
		}
	}
	if !found {
		return nil, ErrNoHeader
	}

	for i < len(lines) {
		line := lines[i]
		if !strings.HasPrefix(line, "@@") {
			i++
			continue
		}
		h, next, err := parseHunk(lines, i)
		if err != nil {
			return nil, err
		}
		p.Hunks = append(p.Hunks, h)
		i = next
	}
	return p, nil
}

func parseHunk(lines []string, i int) (Hunk, int, error) {
	m := hunkHeaderRex.FindStringSubmatch(lines[i])
	if m == nil {
		return Hunk{}, 0, fmt.Errorf("%w: bad header %q", ErrBadHunk, lines[i])
	}
	h := Hunk{
		OldStart: atoi(m[1]),
		OldLines: atoiDefault(m[2], 1),
		NewStart: atoi(m[3]),
		NewLines: atoiDefault(m[4], 1),
	}
	i++

	oldSeen, newSeen := 0, 0
	for i < len(lines) && (oldSeen < h.OldLines || newSeen < h.NewLines) {
		line := lines[i]
		op := byte(' ')
		body := ""
		switch {
		case line == "":
			// Editors strip the single space of blank context lines.
		case line[0] == ' ' || line[0] == '-' || line[0] == '+':
			op, body = line[0], line[1:]
		case line[0] == '\\':
			i++
			continue
		default:
			return Hunk{}, 0, fmt.Errorf("%w: unexpected line %q", ErrBadHunk, line)
		}
		h.Lines = append(h.Lines, Line{Op: op, Text: body + "\n"})
		if op != '+' {
			oldSeen++
		}
		if op != '-' {
			newSeen++
		}
		i++
		if i < len(lines) && strings.HasPrefix(lines[i], `\`) {
			last := &h.Lines[len(h.Lines)-1]
			last.Text = strings.TrimSuffix(last.Text, "\n")
			i++
		}
	}
	if oldSeen != h.OldLines || newSeen != h.NewLines {
		return Hunk{}, 0, fmt.Errorf("%w: expected -%d +%d lines, got -%d +%d", ErrBadHunk, h.OldLines, h.NewLines, oldSeen, newSeen)
	}
	return h, i, nil
}

func stripPrefix(path, prefix string) string {
	path = strings.TrimSpace(path)
	if idx := strings.IndexByte(path, '\t'); idx >= 0 {
		path = path[:idx]
	}
	return strings.TrimPrefix(path, prefix)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}

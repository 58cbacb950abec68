// Package diff renders unified diffs between two versions of a file and
// applies them back strictly, without fuzz.
package diff

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ContextLines is the number of unchanged lines kept around each change.
const ContextLines = 3

const noNewlineMarker = `\ No newline at end of file`

// Line is one line of a hunk. Text keeps its trailing newline, if any.
type Line struct {
	Op   byte
	Text string
}

// Hunk is one @@ section of a unified diff.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Lines              []Line
}

// Patch is a parsed single-file unified diff.
type Patch struct {
	OldPath string
	NewPath string
	Hunks   []Hunk
}

// IsIdentity reports whether the patch changes nothing.
func (p *Patch) IsIdentity() bool { return len(p.Hunks) == 0 }

// Stats counts added and removed lines.
func (p *Patch) Stats() (added, removed int) {
	for _, h := range p.Hunks {
		for _, l := range h.Lines {
			switch l.Op {
			case '+':
				added++
			case '-':
				removed++
			}
		}
	}
	return added, removed
}

// Synthesize returns a unified diff turning original into updated. The
// result always carries file headers, so equal inputs yield a valid diff
// with zero hunks.
func Synthesize(path, original, updated string) string {
	p := &Patch{OldPath: path, NewPath: path}
	if original != updated {
		p.Hunks = buildHunks(lineOps(original, updated), ContextLines)
	}
	return p.String()
}

// String renders the patch in unified format.
func (p *Patch) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", slashPath(p.OldPath))
	fmt.Fprintf(&b, "+++ b/%s\n", slashPath(p.NewPath))
	for _, h := range p.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
		for _, l := range h.Lines {
			b.WriteByte(l.Op)
			if strings.HasSuffix(l.Text, "\n") {
				b.WriteString(l.Text)
				continue
			}
			b.WriteString(l.Text)
			b.WriteString("\n" + noNewlineMarker + "\n")
		}
	}
	return b.String()
}

func slashPath(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "/")
}

// lineOps computes a line-level edit script with diffmatchpatch.
func lineOps(original, updated string) []Line {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(original, updated)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var ops []Line
	for _, d := range diffs {
		var op byte
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op = ' '
		case diffmatchpatch.DiffDelete:
			op = '-'
		case diffmatchpatch.DiffInsert:
			op = '+'
		}
		for _, text := range SplitLines(d.Text) {
			ops = append(ops, Line{Op: op, Text: text})
		}
	}
	return ops
}

// SplitLines splits s into lines that keep their newline terminator.
// The last line has no terminator when s does not end with one.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func buildHunks(ops []Line, context int) []Hunk {
	n := len(ops)
	oldPos := make([]int, n+1)
	newPos := make([]int, n+1)
	for i, op := range ops {
		oldPos[i+1], newPos[i+1] = oldPos[i], newPos[i]
		if op.Op != '+' {
			oldPos[i+1]++
		}
		if op.Op != '-' {
			newPos[i+1]++
		}
	}

	var hunks []Hunk
	i := 0
	for i < n {
		for i < n && ops[i].Op == ' ' {
			i++
		}
		if i >= n {
			break
		}
		start := max(i-context, 0)

		end := i
		for {
			for end < n && ops[end].Op != ' ' {
				end++
			}
			next := end
			for next < n && ops[next].Op == ' ' {
				next++
			}
			if next < n && next-end <= 2*context {
				end = next
				continue
			}
			break
		}
		stop := min(end+context, n)

		h := Hunk{
			OldStart: oldPos[start] + 1,
			OldLines: oldPos[stop] - oldPos[start],
			NewStart: newPos[start] + 1,
			NewLines: newPos[stop] - newPos[start],
			Lines:    append([]Line(nil), ops[start:stop]...),
		}
		if h.OldLines == 0 {
			h.OldStart--
		}
		if h.NewLines == 0 {
			h.NewStart--
		}
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}

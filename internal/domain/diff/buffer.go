package diff

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHunkMismatch means a hunk's context or removed lines were not found.
var ErrHunkMismatch = errors.New("hunk does not match")

type bufLine struct {
	text     string
	inserted bool
	deleted  bool
}

// Buffer is a file's working copy during an apply batch. Each line knows
// whether it came from disk or was inserted by an earlier patch in the
// batch. On-disk lines removed by an earlier patch stay behind as
// tombstones. Hunks anchor on on-disk lines, tombstones included, so every
// patch computed against the file as read matches no matter what earlier
// patches in the batch inserted or replaced.
type Buffer struct {
	lines []bufLine
}

// NewBuffer loads content as on-disk lines.
func NewBuffer(content string) *Buffer {
	b := &Buffer{}
	for _, l := range SplitLines(content) {
		b.lines = append(b.lines, bufLine{text: l})
	}
	return b
}

// NewBufferFromEdit loads updated as an edit of original: lines only in
// updated are inserted, lines only in original become tombstones.
func NewBufferFromEdit(original, updated string) *Buffer {
	b := &Buffer{}
	for _, op := range lineOps(original, updated) {
		switch op.Op {
		case ' ':
			b.lines = append(b.lines, bufLine{text: op.Text})
		case '-':
			b.lines = append(b.lines, bufLine{text: op.Text, deleted: true})
		case '+':
			b.lines = append(b.lines, bufLine{text: op.Text, inserted: true})
		}
	}
	return b
}

// String returns the buffer content.
func (b *Buffer) String() string {
	var s strings.Builder
	for _, l := range b.lines {
		if !l.deleted {
			s.WriteString(l.text)
		}
	}
	return s.String()
}

// Apply applies every hunk of p or none of them. Matching is exact: a
// hunk's context and removed lines must equal a contiguous run of on-disk
// lines, and a removed line must not already be a tombstone. The search
// starts at the hunk's recorded position and widens outward one line at a
// time.
func (b *Buffer) Apply(p *Patch) error {
	lines := b.lines
	floor := 0
	for idx, h := range p.Hunks {
		var err error
		var next int
		lines, next, err = applyHunk(lines, h, h.OldStart-1, floor)
		if err != nil {
			return fmt.Errorf("hunk %d (@@ -%d,%d): %w", idx+1, h.OldStart, h.OldLines, err)
		}
		floor = next
	}
	b.lines = lines
	return nil
}

// ApplyText parses and applies a unified diff.
func (b *Buffer) ApplyText(patch string) error {
	p, err := Parse(patch)
	if err != nil {
		return err
	}
	return b.Apply(p)
}

// applyHunk returns the new line slice and the projection index just past
// the hunk, which bounds where the next hunk may match.
func applyHunk(lines []bufLine, h Hunk, expected, floor int) ([]bufLine, int, error) {
	var old []Line
	for _, l := range h.Lines {
		if l.Op != '+' {
			old = append(old, l)
		}
	}
	if h.OldLines == 0 {
		// a hunk without old lines comes from an empty original; files
		// created earlier in the batch take further creations after their
		// inserted lines
		if h.OldStart == 0 && hasDiskLines(lines) {
			return nil, 0, ErrHunkMismatch
		}
		expected++
	}

	proj := make([]int, 0, len(lines))
	for i, l := range lines {
		if !l.inserted {
			proj = append(proj, i)
		}
	}

	k, ok := locate(lines, proj, old, expected, floor)
	if !ok {
		return nil, 0, ErrHunkMismatch
	}

	anchor := len(lines)
	if k < len(proj) {
		anchor = proj[k]
	}
	out := make([]bufLine, 0, len(lines)+len(h.Lines))
	out = append(out, lines[:anchor]...)
	c := anchor
	oi := 0
	for _, l := range h.Lines {
		switch l.Op {
		case ' ':
			target := proj[k+oi]
			out = append(out, lines[c:target+1]...)
			c = target + 1
			oi++
		case '-':
			target := proj[k+oi]
			out = append(out, lines[c:target]...)
			out = append(out, bufLine{text: lines[target].text, deleted: true})
			c = target + 1
			oi++
		case '+':
			for c < len(lines) && lines[c].inserted && (oi >= len(old) || c < proj[k+oi]) {
				out = append(out, lines[c])
				c++
			}
			out = append(out, bufLine{text: l.Text, inserted: true})
		}
	}
	out = append(out, lines[c:]...)

	// Removed lines stay in the projection as tombstones.
	return out, k + len(old), nil
}

func hasDiskLines(lines []bufLine) bool {
	for _, l := range lines {
		if !l.inserted {
			return true
		}
	}
	return false
}

func locate(lines []bufLine, proj []int, old []Line, expected, floor int) (int, bool) {
	last := len(proj) - len(old)
	if last < floor {
		return 0, false
	}
	expected = min(max(expected, floor), last)
	for d := 0; ; d++ {
		lo, hi := expected-d, expected+d
		if lo < floor && hi > last {
			return 0, false
		}
		if hi <= last && matchAt(lines, proj, old, hi) {
			return hi, true
		}
		if d > 0 && lo >= floor && matchAt(lines, proj, old, lo) {
			return lo, true
		}
	}
}

func matchAt(lines []bufLine, proj []int, old []Line, k int) bool {
	for i, want := range old {
		l := lines[proj[k+i]]
		if l.text != want.Text || (want.Op == '-' && l.deleted) {
			return false
		}
	}
	return true
}

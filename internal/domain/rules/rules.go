// Package rules proposes SDK integration changes. Each module covers one
// part on one platform and runs a fixed list of steps; a step reads the
// files it cares about, runs a mutator and turns the difference into a
// Change. Steps never see each other's output.
package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/diff"
)

type step func(r *runner) error

// Module is a rule module: an ordered list of steps for one part on one
// platform.
type Module struct {
	part     domain.Part
	platform domain.AppPlatform
	steps    []step
}

func (m *Module) Part() domain.Part { return m.part }

func (m *Module) Platform() domain.AppPlatform { return m.platform }

func (m *Module) String() string { return fmt.Sprintf("%s/%s", m.platform, m.part) }

func newModule(part domain.Part, platform domain.AppPlatform, steps ...step) *Module {
	return &Module{part: part, platform: platform, steps: steps}
}

// Run executes every step in order and returns their changes.
func (m *Module) Run(ctx domain.RuleContext) ([]domain.Change, error) {
	r := &runner{ctx: ctx, part: m.part, platform: m.platform}
	for _, s := range m.steps {
		if err := s(r); err != nil {
			return nil, fmt.Errorf("%s rules: %w", m, err)
		}
	}
	return r.changes, nil
}

// runner carries one module run.
type runner struct {
	ctx      domain.RuleContext
	part     domain.Part
	platform domain.AppPlatform
	changes  []domain.Change
}

// inputs returns the request inputs with default versions filled in.
func (r *runner) inputs() domain.Inputs { return r.ctx.Inputs.WithDefaults() }

func (r *runner) android() domain.AndroidLayout {
	if r.ctx.Scan == nil {
		return domain.AndroidLayout{}
	}
	return r.ctx.Scan.Android
}

// read returns a file's content. A missing file is not an error.
func (r *runner) read(path string) (string, bool, error) {
	if path == "" {
		return "", false, nil
	}
	content, err := r.ctx.FS.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", r.rel(path), err)
	}
	return content, true, nil
}

// rel renders path relative to the project root for diff headers.
func (r *runner) rel(path string) string {
	if rel, err := filepath.Rel(r.ctx.RootPath, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// abs resolves a user-supplied path against the project root.
func (r *runner) abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.ctx.RootPath, path)
}

// edit describes one file change a step wants.
type edit struct {
	ID      string
	Title   string
	Summary string
	Path    string
	// Create allows the file to be created when missing.
	Create bool
	// Kind overrides the inferred kind (create for new files, insert
	// otherwise).
	Kind domain.ChangeKind
	// Update reports whether src holds an older value the edit replaces.
	Update func(src string) bool
	// Snippet is shown when the change cannot be automated.
	Snippet string
	Mutate  func(src string) (string, error)
	// Done reports whether src already holds the construct. When Mutate
	// leaves src unchanged and Done says no, the anchor was missing and an
	// advisory is emitted. A nil Done treats unchanged content as done.
	Done func(src string) bool
}

func confidenceFor(kind domain.ChangeKind) float64 {
	switch kind {
	case domain.KindCreate:
		return domain.ConfidenceCreate
	case domain.KindUpdate:
		return domain.ConfidenceUpdate
	}
	return domain.ConfidenceInsert
}

// apply runs e against the current file content.
func (r *runner) apply(e edit) error {
	src, exists, err := r.read(e.Path)
	if err != nil {
		return err
	}
	if !exists && !e.Create {
		dir := filepath.Dir(e.Path)
		if e.Path == "" {
			dir = r.ctx.RootPath
		}
		r.advise(e.ID, e.Title, fmt.Sprintf("%s is missing; apply by hand.", filepath.Base(e.Path)), dir, e.Snippet)
		return nil
	}
	out, err := e.Mutate(src)
	if errors.Is(err, domain.ErrMalformedDocument) {
		// unreadable project file: propose nothing for it
		return nil
	}
	if err != nil {
		return err
	}
	if out == src {
		if e.Done != nil && !e.Done(src) {
			r.advise(e.ID, e.Title, "No safe insertion point was found; apply by hand.", e.Path, e.Snippet)
		}
		return nil
	}
	kind := e.Kind
	switch {
	case !exists:
		kind = domain.KindCreate
	case kind == "" && e.Update != nil && e.Update(src):
		kind = domain.KindUpdate
	case kind == "":
		kind = domain.KindInsert
	}
	r.changes = append(r.changes, domain.Change{
		ID:              e.ID,
		Title:           e.Title,
		Summary:         e.Summary,
		FilePath:        e.Path,
		Kind:            kind,
		Patch:           diff.Synthesize(r.rel(e.Path), src, out),
		OriginalContent: src,
		NewContent:      out,
		Confidence:      confidenceFor(kind),
		Module:          r.part,
		ManualSnippet:   e.Snippet,
	})
	return nil
}

// advise records an advisory change.
func (r *runner) advise(id, title, summary, path, snippet string) {
	r.changes = append(r.changes, domain.Change{
		ID:            id,
		Title:         title,
		Summary:       summary,
		FilePath:      path,
		Kind:          domain.KindInsert,
		Confidence:    domain.ConfidenceAdvisory,
		Module:        r.part,
		ManualSnippet: snippet,
	})
}

// partSuffix distinguishes per-part ids: "" for base, "-push", "-px".
func partSuffix(p domain.Part) string {
	if p == domain.PartBase {
		return ""
	}
	return "-" + string(p)
}

// plain wraps a mutator that cannot fail.
func plain(f func(string) string) func(string) (string, error) {
	return func(s string) (string, error) { return f(s), nil }
}

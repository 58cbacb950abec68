package application

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/diff"
)

// ApplyService is the patcher: it applies a batch of changes, reading each
// touched file once and writing it once.
type ApplyService struct {
	fs      domain.FileSystem
	journal domain.ApplyJournal
	git     domain.GitInfo
	logger  *slog.Logger
	now     func() time.Time
}

// NewApplyService wires a patcher. journal and git may be nil; a nil
// logger logs through slog.Default.
func NewApplyService(fs domain.FileSystem, journal domain.ApplyJournal, git domain.GitInfo, logger *slog.Logger) *ApplyService {
	return &ApplyService{fs: fs, journal: journal, git: git, logger: orDefault(logger), now: time.Now}
}

// fileState is one file's working copy for the duration of a batch.
type fileState struct {
	original string
	buf      *diff.Buffer
	dirty    bool
}

// ApplyChanges applies changes in order and returns one result per change.
//
// A change whose patch fails falls back to its NewContent only while its
// file is still untouched in this batch; otherwise it fails. Failures never
// abort the batch. Touched files are written once, after every change has
// been tried. Only I/O errors are returned.
func (s *ApplyService) ApplyChanges(changes []domain.Change, dryRun bool) ([]domain.ApplyResult, error) {
	results := make([]domain.ApplyResult, 0, len(changes))
	if dryRun {
		for _, c := range changes {
			results = append(results, domain.ApplyResult{ChangeID: c.ID, Message: domain.MsgDryRun})
		}
		return results, nil
	}

	files := make(map[string]*fileState)
	var order []string
	for _, c := range changes {
		if c.IsAdvisory() {
			results = append(results, domain.ApplyResult{ChangeID: c.ID, Message: domain.MsgNoPatch})
			continue
		}
		st, ok := files[c.FilePath]
		if !ok {
			var err error
			if st, err = s.load(c.FilePath); err != nil {
				return nil, err
			}
			files[c.FilePath] = st
			order = append(order, c.FilePath)
		}
		results = append(results, s.applyOne(st, c))
	}

	for _, path := range order {
		st := files[path]
		if !st.dirty {
			continue
		}
		if err := s.fs.WriteFile(path, st.buf.String()); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		s.logger.Debug("file written", "file", path)
	}
	return results, nil
}

func (s *ApplyService) load(path string) (*fileState, error) {
	content := ""
	if s.fs.Exists(path) {
		var err error
		if content, err = s.fs.ReadFile(path); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return &fileState{original: content, buf: diff.NewBuffer(content)}, nil
}

func (s *ApplyService) applyOne(st *fileState, c domain.Change) domain.ApplyResult {
	err := st.buf.ApplyText(c.Patch)
	if err == nil {
		st.dirty = true
		s.logger.Debug("change applied", "id", c.ID, "file", c.FilePath)
		return domain.ApplyResult{ChangeID: c.ID, Applied: true, Message: domain.MsgApplied}
	}
	if c.HasFallback() && st.buf.String() == st.original {
		st.buf = diff.NewBufferFromEdit(st.original, c.NewContent)
		st.dirty = true
		s.logger.Debug("change applied from full content", "id", c.ID, "file", c.FilePath, "patch_error", err)
		return domain.ApplyResult{ChangeID: c.ID, Applied: true, Message: domain.MsgAppliedFull}
	}
	s.logger.Warn("patch failed", "id", c.ID, "file", c.FilePath, "error", err)
	return domain.ApplyResult{ChangeID: c.ID, Message: domain.MsgPatchFailed}
}

// ApplyAndRecord applies changes and, for a real batch, appends the
// results to the project's journal. Journal failures are logged, not
// returned.
func (s *ApplyService) ApplyAndRecord(rootPath string, changes []domain.Change, dryRun bool) ([]domain.ApplyResult, error) {
	results, err := s.ApplyChanges(changes, dryRun)
	if err != nil {
		return nil, err
	}
	applied := 0
	for _, r := range results {
		if r.Applied {
			applied++
		}
	}
	s.logger.Info("apply finished", "root", rootPath, "changes", len(changes), "applied", applied, "dry_run", dryRun)
	if dryRun || s.journal == nil || len(results) == 0 {
		return results, nil
	}

	entry := domain.JournalEntry{Timestamp: s.now().UTC().Format(time.RFC3339), Results: results}
	if s.git != nil && s.git.IsGitRepo(rootPath) {
		if hash, err := s.git.CommitHash(rootPath); err == nil {
			entry.CommitHash = hash
		}
	}
	if err := s.journal.Record(rootPath, entry); err != nil {
		s.logger.Warn("recording apply journal", "root", rootPath, "error", err)
	}
	return results, nil
}

// Package journal keeps a per-project record of apply batches.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bwmarrin/snowflake"

	"github.com/openkraft/sdkweave/internal/domain"
)

const journalFile = ".sdkweave/history/applies.json"

// FileJournal implements domain.ApplyJournal using JSON file storage.
type FileJournal struct {
	node *snowflake.Node
}

// New returns a FileJournal. node selects the snowflake node id used for
// run ids; one process should use one node.
func New(node int64) (*FileJournal, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("creating run id node: %w", err)
	}
	return &FileJournal{node: n}, nil
}

// NextRunID returns a fresh, time-ordered run id.
func (j *FileJournal) NextRunID() string {
	return j.node.Generate().String()
}

// Record appends entry to the project's journal. An empty RunID is filled.
func (j *FileJournal) Record(projectPath string, entry domain.JournalEntry) error {
	entries, err := j.Load(projectPath)
	if err != nil {
		return err
	}
	if entry.RunID == "" {
		entry.RunID = j.NextRunID()
	}
	entries = append(entries, entry)

	fp := filepath.Join(projectPath, journalFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fp, data, 0644)
}

// Load returns the recorded entries, oldest first.
func (j *FileJournal) Load(projectPath string) ([]domain.JournalEntry, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, journalFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []domain.JournalEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", journalFile, err)
	}
	return entries, nil
}

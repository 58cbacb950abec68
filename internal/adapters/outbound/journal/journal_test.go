package journal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/sdkweave/internal/adapters/outbound/journal"
	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJournal(t *testing.T) *journal.FileJournal {
	t.Helper()
	j, err := journal.New(1)
	require.NoError(t, err)
	return j
}

func TestJournal_RecordAndLoad(t *testing.T) {
	dir := t.TempDir()
	j := newJournal(t)

	err := j.Record(dir, domain.JournalEntry{
		Timestamp:  "2026-10-15T10:00:00Z",
		CommitHash: "abc1234",
		Results:    []domain.ApplyResult{{ChangeID: "android-manifest-smt-app-id", Applied: true, Message: domain.MsgApplied}},
	})
	require.NoError(t, err)

	entries, err := j.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].RunID)
	assert.Equal(t, "abc1234", entries[0].CommitHash)
	require.Len(t, entries[0].Results, 1)
	assert.True(t, entries[0].Results[0].Applied)
}

func TestJournal_AppendKeepsOrderAndDistinctIDs(t *testing.T) {
	dir := t.TempDir()
	j := newJournal(t)

	require.NoError(t, j.Record(dir, domain.JournalEntry{Timestamp: "t1"}))
	require.NoError(t, j.Record(dir, domain.JournalEntry{Timestamp: "t2"}))
	require.NoError(t, j.Record(dir, domain.JournalEntry{Timestamp: "t3", RunID: "given"}))

	entries, err := j.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "t1", entries[0].Timestamp)
	assert.Equal(t, "t3", entries[2].Timestamp)
	assert.NotEqual(t, entries[0].RunID, entries[1].RunID)
	assert.Equal(t, "given", entries[2].RunID)
}

func TestJournal_LoadEmpty(t *testing.T) {
	entries, err := newJournal(t).Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournal_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, newJournal(t).Record(dir, domain.JournalEntry{Timestamp: "t1"}))

	_, err := os.Stat(filepath.Join(dir, ".sdkweave", "history", "applies.json"))
	assert.NoError(t, err)
}

func TestJournal_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, ".sdkweave", "history", "applies.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(fp), 0755))
	require.NoError(t, os.WriteFile(fp, []byte("not json"), 0644))

	_, err := newJournal(t).Load(dir)
	assert.Error(t, err)
}

func TestNew_RejectsOutOfRangeNode(t *testing.T) {
	_, err := journal.New(1 << 20)
	assert.Error(t, err)
}

package domain

// FileSystem is the engine's only view of the target project.
// ReadFile returns an error satisfying errors.Is(err, fs.ErrNotExist) for
// missing files.
type FileSystem interface {
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
	Exists(path string) bool
	IsDir(path string) bool
	// ListFiles returns files under dir whose extension is in exts,
	// skipping build output and paths ignored by the project.
	ListFiles(dir string, exts ...string) ([]string, error)
}

// ScopedFileSystem is a FileSystem that can be narrowed to one project for
// the length of a request.
type ScopedFileSystem interface {
	FileSystem
	Scope(rootPath string) FileSystem
}

// ScopeFS narrows fsys to rootPath when it supports scoping.
func ScopeFS(fsys FileSystem, rootPath string) FileSystem {
	if s, ok := fsys.(ScopedFileSystem); ok {
		return s.Scope(rootPath)
	}
	return fsys
}

// ProjectProber derives a ProjectScan from the file system.
type ProjectProber interface {
	Probe(rootPath string, declared AppPlatform) (*ProjectScan, error)
}

// RuleContext is everything a rule module may look at.
type RuleContext struct {
	Scan     *ProjectScan
	RootPath string
	Inputs   Inputs
	// Parts is the whole selection of the request, so a step that owns a
	// shared construct can cover every selected part at once.
	Parts []Part
	FS    FileSystem
}

// Selected reports whether part is in the request's selection.
func (c RuleContext) Selected(part Part) bool {
	for _, p := range c.Parts {
		if p == part {
			return true
		}
	}
	return false
}

// RuleModule proposes changes for one part on one platform. It reads the
// file system but never writes.
type RuleModule interface {
	Part() Part
	Platform() AppPlatform
	Run(ctx RuleContext) ([]Change, error)
}

// ConfigLoader loads project-level defaults for a request.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// GitInfo reports repository state of the target project.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
	IsDirty(projectPath string) (bool, error)
}

// ApplyJournal records apply batches.
type ApplyJournal interface {
	Record(projectPath string, entry JournalEntry) error
	Load(projectPath string) ([]JournalEntry, error)
}

// JournalEntry is one recorded apply batch.
type JournalEntry struct {
	RunID      string        `json:"run_id"`
	Timestamp  string        `json:"timestamp"`
	CommitHash string        `json:"commit_hash,omitempty"`
	Results    []ApplyResult `json:"results"`
}

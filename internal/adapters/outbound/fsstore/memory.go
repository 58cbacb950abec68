package fsstore

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory domain.FileSystem. It counts writes per path,
// which previews and tests use to observe an apply batch.
type Memory struct {
	mu     sync.Mutex
	files  map[string]string
	writes map[string]int
}

// NewMemory returns a Memory holding files, keyed by path.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{files: make(map[string]string, len(files)), writes: make(map[string]int)}
	for p, c := range files {
		m.files[filepath.Clean(p)] = c
	}
	return m
}

func (m *Memory) ReadFile(path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.files[filepath.Clean(path)]
	if !ok {
		return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return c, nil
}

func (m *Memory) WriteFile(path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := filepath.Clean(path)
	m.files[p] = content
	m.writes[p]++
	return nil
}

func (m *Memory) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := filepath.Clean(path)
	if _, ok := m.files[p]; ok {
		return true
	}
	return m.hasDir(p)
}

func (m *Memory) IsDir(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasDir(filepath.Clean(path))
}

func (m *Memory) hasDir(dir string) bool {
	prefix := dir + string(filepath.Separator)
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (m *Memory) ListFiles(dir string, exts ...string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	var out []string
	for p := range m.files {
		if !strings.HasPrefix(p, prefix) || !hasExt(p, exts) {
			continue
		}
		skipped := false
		rel := filepath.Dir(strings.TrimPrefix(p, prefix))
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if skipDirs[part] {
				skipped = true
				break
			}
		}
		if !skipped {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Files returns a copy of the current contents.
func (m *Memory) Files() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.files))
	for p, c := range m.files {
		out[p] = c
	}
	return out
}

// Writes returns how many times path was written.
func (m *Memory) Writes(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[filepath.Clean(path)]
}

// TotalWrites returns the number of writes across all paths.
func (m *Memory) TotalWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.writes {
		n += c
	}
	return n
}

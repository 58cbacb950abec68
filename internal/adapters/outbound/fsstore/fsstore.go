// Package fsstore implements domain.FileSystem over the local disk and in
// memory.
package fsstore

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/openkraft/sdkweave/internal/domain"
)

// Directories never searched for source files.
var skipDirs = map[string]bool{
	".git":         true,
	".gradle":      true,
	".idea":        true,
	".dart_tool":   true,
	"build":        true,
	"node_modules": true,
	"Pods":         true,
	"generated":    true,
}

// Disk implements domain.FileSystem on the local file system.
type Disk struct {
	root    string
	mu      sync.Mutex
	ignores map[string]*ignoreRules
}

type ignoreRules struct {
	root  string
	rules *ignore.GitIgnore
}

// New returns a Disk. ListFiles honors the .gitignore of the listed
// directory; reads and writes are not restricted.
func New() *Disk {
	return &Disk{}
}

// Scope returns a Disk for one request on the project at rootPath. Its
// .gitignore lookups climb from the listed directory up to rootPath and
// are cached for the life of the returned Disk.
func (d *Disk) Scope(rootPath string) domain.FileSystem {
	return &Disk{root: filepath.Clean(rootPath), ignores: make(map[string]*ignoreRules)}
}

// ignoreFor returns the rules of the nearest .gitignore at or above dir,
// never looking above the scope root.
func (d *Disk) ignoreFor(dir string) *ignoreRules {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.ignores[dir]; ok {
		return r
	}
	top := dir
	if d.root != "" && within(d.root, dir) {
		top = d.root
	}
	var found *ignoreRules
	for cur := dir; ; cur = filepath.Dir(cur) {
		if lines, err := readLines(filepath.Join(cur, ".gitignore")); err == nil {
			found = &ignoreRules{root: cur, rules: ignore.CompileIgnoreLines(lines...)}
			break
		}
		if cur == top || filepath.Dir(cur) == cur {
			break
		}
	}
	if d.ignores != nil {
		d.ignores[dir] = found
	}
	return found
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func (d *Disk) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFile writes content, creating parent directories and keeping the
// mode of an existing file.
func (d *Disk) WriteFile(path, content string) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(content), mode)
}

func (d *Disk) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (d *Disk) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ListFiles walks dir and returns the files with one of exts, skipping
// build output and ignored paths.
func (d *Disk) ListFiles(dir string, exts ...string) ([]string, error) {
	var files []string
	rules := d.ignoreFor(filepath.Clean(dir))
	err := filepath.WalkDir(dir, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ignored := rules.matches(path)
		if e.IsDir() {
			if path != dir && (skipDirs[e.Name()] || ignored) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignored || !hasExt(e.Name(), exts) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	return files, nil
}

func (r *ignoreRules) matches(path string) bool {
	if r == nil {
		return false
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil || strings.HasPrefix(rel, "..") || rel == "." {
		return false
	}
	return r.rules.MatchesPath(filepath.ToSlash(rel))
}

func hasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

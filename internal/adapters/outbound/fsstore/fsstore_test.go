package fsstore_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/sdkweave/internal/adapters/outbound/fsstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func rel(t *testing.T, dir string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestDisk_ListFilesSkipsBuildOutputAndIgnored(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".gitignore": "generated-src/\n*.bak.kt\n",

		"app/src/main/java/a/Main.kt":    "",
		"app/src/main/java/a/Old.bak.kt": "",
		"app/src/main/java/a/Util.java":  "",
		"app/src/main/java/a/notes.txt":  "",
		"app/build/tmp/Gen.java":         "",
		"app/generated-src/Gen.kt":       "",
		"node_modules/lib/Lib.java":      "",
	})

	files, err := fsstore.New().ListFiles(dir, ".java", ".kt")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"app/src/main/java/a/Main.kt",
		"app/src/main/java/a/Util.java",
	}, rel(t, dir, files))
}

func TestDisk_ScopeBoundsGitignoreLookup(t *testing.T) {
	outer := t.TempDir()
	root := filepath.Join(outer, "project")
	app := filepath.Join(root, "app")
	writeTree(t, outer, map[string]string{
		".gitignore":          "*.kt\n",
		"project/app/Main.kt": "",
	})
	d := fsstore.New()

	files, err := d.Scope(root).ListFiles(app, ".kt")
	require.NoError(t, err)
	assert.Equal(t, []string{"app/Main.kt"}, rel(t, root, files), "rules above the project root do not apply")

	writeTree(t, root, map[string]string{".gitignore": "Main.kt\n"})
	files, err = d.Scope(root).ListFiles(app, ".kt")
	require.NoError(t, err)
	assert.Empty(t, files)

	writeTree(t, root, map[string]string{".gitignore": "Other.kt\n"})
	files, err = d.Scope(root).ListFiles(app, ".kt")
	require.NoError(t, err)
	assert.Equal(t, []string{"app/Main.kt"}, rel(t, root, files), "each scope reads the current rules")

	files, err = d.ListFiles(app, ".kt")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestDisk_WriteFileCreatesDirectoriesAndKeepsMode(t *testing.T) {
	dir := t.TempDir()
	d := fsstore.New()

	created := filepath.Join(dir, "res", "xml", "rules.xml")
	require.NoError(t, d.WriteFile(created, "<rules />\n"))
	got, err := d.ReadFile(created)
	require.NoError(t, err)
	assert.Equal(t, "<rules />\n", got)

	script := filepath.Join(dir, "gradlew")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, d.WriteFile(script, "#!/bin/sh\nexit 0\n"))
	info, err := os.Stat(script)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o755), info.Mode().Perm())
}

func TestDisk_ReadMissingFile(t *testing.T) {
	_, err := fsstore.New().ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemory(t *testing.T) {
	m := fsstore.NewMemory(map[string]string{
		"/p/app/src/main/java/A.java": "class A {}",
		"/p/app/build/B.java":         "class B {}",
		"/p/app/src/main/res/x.xml":   "<x/>",
	})

	assert.True(t, m.IsDir("/p/app"))
	assert.False(t, m.IsDir("/p/app/src/main/java/A.java"))
	assert.True(t, m.Exists("/p/app/src/main/java/A.java"))
	assert.False(t, m.Exists("/p/other"))

	files, err := m.ListFiles("/p/app", ".java")
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/app/src/main/java/A.java"}, files)

	_, err = m.ReadFile("/p/none")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, m.WriteFile("/p/app/src/main/res/x.xml", "<y/>"))
	require.NoError(t, m.WriteFile("/p/app/src/main/res/x.xml", "<z/>"))
	assert.Equal(t, 2, m.Writes("/p/app/src/main/res/x.xml"))
	assert.Equal(t, 2, m.TotalWrites())
	assert.Equal(t, "<z/>", m.Files()["/p/app/src/main/res/x.xml"])
}

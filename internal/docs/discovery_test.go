package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/rsttools/internal/docs/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func relativePaths(files []DocFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelativePath)
	}
	return out
}

func TestDiscover_RecursiveWithExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.rst"), "Index\n=====\n")
	writeFile(t, filepath.Join(root, "guide", "install.rst"), "")
	writeFile(t, filepath.Join(root, "guide", "images", "logo.png"), "")
	writeFile(t, filepath.Join(root, "_build", "index.rst"), "")
	writeFile(t, filepath.Join(root, "notes.txt"), "")

	files, err := NewDiscovery(".rst", []string{"_build"}).Discover(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"guide/install.rst", "index.rst"}, relativePaths(files))
	assert.Equal(t, filepath.Join(root, "guide"), files[0].Dir)
	assert.Equal(t, filepath.Join(root, "guide", "install.rst"), files[0].Path)
}

func TestDiscover_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rst"), "")
	if err := os.Symlink(root, filepath.Join(root, "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "a.rst"), filepath.Join(root, "b.rst")))

	files, err := NewDiscovery("rst", nil).Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.rst"}, relativePaths(files))
}

func TestDiscover_CustomExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rst"), "")
	writeFile(t, filepath.Join(root, "b.txt"), "")

	files, err := NewDiscovery(".txt", nil).Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, relativePaths(files))
}

func TestDiscover_InvalidRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.rst")
	writeFile(t, file, "")

	_, err := NewDiscovery(".rst", nil).Discover(filepath.Join(root, "missing"))
	require.ErrorIs(t, err, derrors.ErrDocsPathNotFound)

	_, err = NewDiscovery(".rst", nil).Discover(file)
	require.ErrorIs(t, err, derrors.ErrDocsPathNotDir)
}

func TestDocFile_LoadContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rst"), "hello\n")

	files, err := NewDiscovery(".rst", nil).Discover(root)
	require.NoError(t, err)
	require.Len(t, files, 1)

	require.NoError(t, files[0].LoadContent())
	assert.Equal(t, "hello\n", string(files[0].Content))

	missing := DocFile{Path: filepath.Join(root, "gone.rst")}
	require.ErrorIs(t, missing.LoadContent(), derrors.ErrFileReadFailed)
}

package rename

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/rsttools/internal/filelock"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/rst"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func plainHighlight(s string) string { return "[" + s + "]" }

// newTree builds a small documentation project:
//
//	index.rst          toctree with guide/install, image of img/logo.png
//	guide/install.rst  :doc: to ../index, figure of ../img/logo.png
//	img/logo.png
func newTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.rst"), "Index\n=====\n\n.. toctree::\n\n   guide/install\n\n.. image:: img/logo.png\n")
	writeFile(t, filepath.Join(root, "guide", "install.rst"), "Install\n=======\n\nBack to :doc:`the index <../index>`.\n\n.. figure:: ../img/logo.png\n")
	writeFile(t, filepath.Join(root, "img", "logo.png"), "png")
	return root
}

func TestOptionsValidation(t *testing.T) {
	root := newTree(t)
	logo := filepath.Join(root, "img", "logo.png")

	tests := []struct {
		name     string
		opts     Options
		category errors.ErrorCategory
	}{
		{"missing source", Options{Source: filepath.Join(root, "nope.png"), Destination: filepath.Join(root, "x.png")}, errors.CategoryNotFound},
		{"source is a directory", Options{Source: filepath.Join(root, "img"), Destination: filepath.Join(root, "x")}, errors.CategoryNotFound},
		{"destination exists", Options{Source: logo, Destination: filepath.Join(root, "index.rst"), BaseDir: root}, errors.CategoryAlreadyExists},
		{"base does not contain source", Options{Source: logo, Destination: filepath.Join(root, "guide", "x.png"), BaseDir: filepath.Join(root, "guide")}, errors.CategoryValidation},
		{"base does not contain destination", Options{Source: logo, Destination: filepath.Join(root, "x.png")}, errors.CategoryValidation},
		{"empty source", Options{}, errors.CategoryValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.category, errors.GetCategory(err))
		})
	}
}

func TestPlan_ResourceRelativeToEachFile(t *testing.T) {
	root := newTree(t)
	r, err := New(Options{
		Source:      filepath.Join(root, "img", "logo.png"),
		Destination: filepath.Join(root, "img", "brand.png"),
		BaseDir:     root,
		Highlight:   plainHighlight,
	})
	require.NoError(t, err)

	plan, err := r.Plan(context.Background())
	require.NoError(t, err)

	require.Len(t, plan.Files, 2)
	assert.Equal(t, 2, plan.FilesScanned)
	assert.Equal(t, 2, plan.ReferenceCount())
	assert.True(t, plan.HasChanges())

	install := plan.Files[0]
	assert.Equal(t, "guide/install.rst", install.RelativePath)
	assert.Equal(t, "../img/logo.png", install.Target)
	assert.Equal(t, "../img/brand.png", install.Destination)
	require.Len(t, install.Changes, 1)
	assert.Equal(t, rst.ChangeRecord{
		Line:        5,
		Original:    ".. figure:: ../img/logo.png",
		Rewritten:   ".. figure:: ../img/brand.png",
		Highlighted: ".. figure:: ../img/[brand].png",
	}, install.Changes[0])

	index := plan.Files[1]
	assert.Equal(t, "index.rst", index.RelativePath)
	assert.Equal(t, rst.KindImage, index.References[0].Kind)
	assert.Equal(t, ".. image:: img/brand.png", index.Changes[0].Rewritten)
}

func TestPlan_DocumentRename(t *testing.T) {
	root := newTree(t)
	r, err := New(Options{
		Source:      filepath.Join(root, "index.rst"),
		Destination: filepath.Join(root, "start.rst"),
	})
	require.NoError(t, err)

	plan, err := r.Plan(context.Background())
	require.NoError(t, err)

	require.Len(t, plan.Files, 1)
	change := plan.Files[0]
	assert.Equal(t, "guide/install.rst", change.RelativePath)
	assert.Equal(t, rst.KindDocRole, change.References[0].Kind)
	assert.Equal(t, "Back to :doc:`the index <../start>`.", change.Changes[0].Rewritten)
}

func TestPlan_QuickFilterSkipsUnrelatedFiles(t *testing.T) {
	root := newTree(t)
	writeFile(t, filepath.Join(root, "unrelated.rst"), "Nothing to see\n")

	r, err := New(Options{Source: filepath.Join(root, "img", "logo.png"), BaseDir: root})
	require.NoError(t, err)

	plan, err := r.Plan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, plan.FilesScanned)
	assert.Empty(t, plan.Destination)
	assert.False(t, plan.HasChanges())
	assert.Equal(t, 2, plan.ReferenceCount())
}

func TestPlan_MalformedMarkup(t *testing.T) {
	root := newTree(t)
	writeFile(t, filepath.Join(root, "broken.rst"), "See :ref:`caption <index\n")

	r, err := New(Options{Source: filepath.Join(root, "index.rst"), Destination: filepath.Join(root, "start.rst")})
	require.NoError(t, err)

	_, err = r.Plan(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CategoryMarkup, errors.GetCategory(err))

	var malformed *rst.MalformedMarkupError
	require.True(t, stderrors.As(err, &malformed))
	assert.Equal(t, 0, malformed.Line)

	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorContext{"file": "broken.rst", "line": 1, "column": 19}, classified.Context())
}

func TestPlan_DestinationLosesExtension(t *testing.T) {
	root := newTree(t)
	r, err := New(Options{Source: filepath.Join(root, "index.rst"), Destination: filepath.Join(root, "index.txt")})
	require.NoError(t, err)

	_, err = r.Plan(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))
	require.ErrorIs(t, err, rst.ErrDestinationNotDocument)
}

func TestPlan_Canceled(t *testing.T) {
	root := newTree(t)
	r, err := New(Options{Source: filepath.Join(root, "index.rst")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Plan(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestApply_RewritesAndMoves(t *testing.T) {
	root := newTree(t)
	src := filepath.Join(root, "img", "logo.png")
	dst := filepath.Join(root, "assets", "brand.png")

	r, err := New(Options{Source: src, Destination: dst, BaseDir: root})
	require.NoError(t, err)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)

	result, err := r.Apply(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, []string{"guide/install.rst", "index.rst"}, result.FilesUpdated)
	assert.False(t, result.GitMove)
	assert.Empty(t, result.Backups)

	assert.NoFileExists(t, src)
	assert.Equal(t, "png", readFile(t, dst))
	assert.Contains(t, readFile(t, filepath.Join(root, "index.rst")), ".. image:: assets/brand.png\n")
	assert.Contains(t, readFile(t, filepath.Join(root, "guide", "install.rst")), ".. figure:: ../assets/brand.png\n")

	leftovers, err := filepath.Glob(filepath.Join(root, "*.backup"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestApply_KeepBackup(t *testing.T) {
	root := newTree(t)
	original := readFile(t, filepath.Join(root, "index.rst"))

	r, err := New(Options{
		Source:      filepath.Join(root, "img", "logo.png"),
		Destination: filepath.Join(root, "img", "brand.png"),
		BaseDir:     root,
		KeepBackup:  true,
	})
	require.NoError(t, err)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)

	result, err := r.Apply(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, result.Backups, 2)
	assert.Equal(t, original, readFile(t, result.Backups[1]))
	assert.Regexp(t, `index\.rst\.rsttools-[0-9a-f]{8}\.backup$`, result.Backups[1])
}

func TestApply_RollbackOnMoveFailure(t *testing.T) {
	root := newTree(t)
	original := readFile(t, filepath.Join(root, "index.rst"))
	// A regular file where the destination directory should be makes MkdirAll fail.
	writeFile(t, filepath.Join(root, "blocked"), "")

	r, err := New(Options{
		Source:      filepath.Join(root, "img", "logo.png"),
		Destination: filepath.Join(root, "blocked", "logo.png"),
		BaseDir:     root,
	})
	require.NoError(t, err)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)

	_, err = r.Apply(context.Background(), plan)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryFileSystem, errors.GetCategory(err))

	assert.Equal(t, original, readFile(t, filepath.Join(root, "index.rst")))
	assert.FileExists(t, filepath.Join(root, "img", "logo.png"))
	leftovers, err := filepath.Glob(filepath.Join(root, "*.backup"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestApply_FileChangedSincePlan(t *testing.T) {
	root := newTree(t)
	r, err := New(Options{
		Source:      filepath.Join(root, "img", "logo.png"),
		Destination: filepath.Join(root, "img", "brand.png"),
		BaseDir:     root,
	})
	require.NoError(t, err)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "index.rst"), "edited\n")

	_, err = r.Apply(context.Background(), plan)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryFileSystem, errors.GetCategory(err))
	assert.FileExists(t, filepath.Join(root, "img", "logo.png"))
	assert.Contains(t, readFile(t, filepath.Join(root, "guide", "install.rst")), "../img/logo.png")
}

func TestApply_RefusesWhileTreeLocked(t *testing.T) {
	root := newTree(t)
	held := filelock.ForTree(root)
	acquired, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, acquired)
	defer func() { _ = held.Unlock() }()

	r, err := New(Options{
		Source:      filepath.Join(root, "img", "logo.png"),
		Destination: filepath.Join(root, "img", "brand.png"),
		BaseDir:     root,
	})
	require.NoError(t, err)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)

	_, err = r.Apply(context.Background(), plan)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryFileSystem, errors.GetCategory(err))
	assert.FileExists(t, filepath.Join(root, "img", "logo.png"))
	assert.Contains(t, readFile(t, filepath.Join(root, "index.rst")), "img/logo.png")
}

func TestApply_RequiresDestination(t *testing.T) {
	root := newTree(t)
	r, err := New(Options{Source: filepath.Join(root, "index.rst")})
	require.NoError(t, err)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)

	_, err = r.Apply(context.Background(), plan)
	assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))
}

func TestApply_NoReferencesOnlyMoves(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lonely.rst"), "Lonely\n")

	r, err := New(Options{Source: filepath.Join(root, "lonely.rst"), Destination: filepath.Join(root, "alone.rst")})
	require.NoError(t, err)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plan.Files)

	result, err := r.Apply(context.Background(), plan)
	require.NoError(t, err)
	assert.Empty(t, result.FilesUpdated)
	assert.FileExists(t, filepath.Join(root, "alone.rst"))
}

func TestApply_GitTrackedSourceIsMovedInIndex(t *testing.T) {
	root := newTree(t)
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add("img/logo.png")
	require.NoError(t, err)

	r, err := New(Options{
		Source:      filepath.Join(root, "img", "logo.png"),
		Destination: filepath.Join(root, "img", "brand.png"),
		BaseDir:     root,
		GitAware:    true,
	})
	require.NoError(t, err)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)

	result, err := r.Apply(context.Background(), plan)
	require.NoError(t, err)
	assert.True(t, result.GitMove)

	idx, err := repo.Storer.Index()
	require.NoError(t, err)
	_, err = idx.Entry("img/brand.png")
	require.NoError(t, err)
	_, err = idx.Entry("img/logo.png")
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(root, "img", "brand.png"))
}

func TestApply_GitUntrackedSourceUsesRename(t *testing.T) {
	root := newTree(t)
	_, err := git.PlainInit(root, false)
	require.NoError(t, err)

	r, err := New(Options{
		Source:      filepath.Join(root, "img", "logo.png"),
		Destination: filepath.Join(root, "img", "brand.png"),
		BaseDir:     root,
		GitAware:    true,
	})
	require.NoError(t, err)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)

	result, err := r.Apply(context.Background(), plan)
	require.NoError(t, err)
	assert.False(t, result.GitMove)
	assert.FileExists(t, filepath.Join(root, "img", "brand.png"))
}

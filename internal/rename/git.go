package rename

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
)

// repository wraps the git repository enclosing the documentation tree.
type repository struct {
	repo *git.Repository
	root string
}

// openRepository returns the repository containing dir, or nil when dir is not
// inside a git work tree.
func openRepository(dir string) *repository {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}
	w, err := repo.Worktree()
	if err != nil {
		return nil // bare repository
	}
	return &repository{repo: repo, root: w.Filesystem.Root()}
}

// rel converts an absolute path to the slash separated, repository relative form
// used by the index.
func (r *repository) rel(path string) (string, bool) {
	rel, err := filepath.Rel(r.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false // Path is outside repository
	}
	return filepath.ToSlash(rel), true
}

// tracks reports whether path has an entry in the git index.
func (r *repository) tracks(path string) bool {
	rel, ok := r.rel(path)
	if !ok {
		return false
	}
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return false
	}
	_, err = idx.Entry(rel)
	return err == nil
}

// move performs the equivalent of "git mv", staging the rename.
func (r *repository) move(from, to string) error {
	relFrom, ok := r.rel(from)
	if !ok {
		return errors.GitError("source is outside the git work tree").WithContext("path", from).Build()
	}
	relTo, ok := r.rel(to)
	if !ok {
		return errors.GitError("destination is outside the git work tree").WithContext("path", to).Build()
	}

	w, err := r.repo.Worktree()
	if err != nil {
		return errors.WrapError(err, errors.CategoryGit, "failed to get git worktree").Build()
	}
	if _, err := w.Move(relFrom, relTo); err != nil {
		return errors.WrapError(err, errors.CategoryGit, "failed to move file in git").
			WithContext("path", relFrom).
			WithContext("destination", relTo).Build()
	}
	return nil
}

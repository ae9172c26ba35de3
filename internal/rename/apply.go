package rename

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/rsttools/internal/filelock"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/logfields"
)

// Result describes an applied rename.
type Result struct {
	Plan         *Plan    `json:"plan"`
	FilesUpdated []string `json:"files_updated"`
	Backups      []string `json:"backups,omitempty"`
	GitMove      bool     `json:"git_move"`
}

// written tracks a rewritten file so it can be restored.
type written struct {
	path   string
	backup string
	mode   os.FileMode
}

// Apply writes the planned rewrites and moves the source to the destination.
// Every file is backed up before it is overwritten; any failure restores all files
// already written. Backups are removed on success unless KeepBackup is set.
// Only one Apply may run per base directory at a time.
func (r *Renamer) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	if plan == nil || plan.Destination == "" {
		return nil, errors.ValidationError("a destination is required to apply a rename").Build()
	}

	lock := filelock.ForTree(plan.BaseDir)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to lock documentation tree").
			WithContext("path", plan.BaseDir).Build()
	}
	if !acquired {
		return nil, errors.FileSystemError("another rsttools run is modifying this documentation tree").
			WithContext("path", plan.BaseDir).
			WithContext("lock", lock.Path()).Build()
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("Failed to release tree lock", logfields.Path(lock.Path()), logfields.Error(err))
		}
	}()

	session := uuid.NewString()[:8]
	result := &Result{Plan: plan}
	var done []written

	for _, f := range plan.Files {
		if len(f.Changes) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			rollback(done)
			return nil, err
		}
		w, err := r.rewriteFile(f, session)
		if err != nil {
			rollback(done)
			return nil, err
		}
		done = append(done, w)
		result.FilesUpdated = append(result.FilesUpdated, f.RelativePath)
		r.recorder.AddLinesRewritten(len(f.Changes))
		slog.Debug("File updated", logfields.File(f.RelativePath), slog.Int("lines", len(f.Changes)))
	}

	gitMove, err := r.move()
	if err != nil {
		rollback(done)
		return nil, err
	}
	result.GitMove = gitMove

	for _, w := range done {
		if r.opts.KeepBackup {
			result.Backups = append(result.Backups, w.backup)
			continue
		}
		_ = os.Remove(w.backup) // Ignore cleanup errors
	}

	slog.Info("File renamed",
		logfields.Source(plan.Source),
		logfields.Destination(plan.Destination),
		slog.Int("files_updated", len(result.FilesUpdated)),
		slog.Bool("git", gitMove))
	return result, nil
}

func (r *Renamer) rewriteFile(f FileChange, session string) (written, error) {
	w := written{path: f.Path, backup: fmt.Sprintf("%s.rsttools-%s.backup", f.Path, session)}

	info, err := os.Stat(f.Path)
	if err != nil {
		return w, errors.WrapError(err, errors.CategoryFileSystem, "failed to stat file").
			WithContext("file", f.RelativePath).Build()
	}
	w.mode = info.Mode().Perm()

	updated, err := f.document.Apply(f.Changes)
	if err != nil {
		return w, errors.WrapError(err, errors.CategoryInternal, "planned change no longer applies").
			WithContext("file", f.RelativePath).Build()
	}

	// #nosec G304 -- path comes from documentation discovery
	original, err := os.ReadFile(f.Path)
	if err != nil {
		return w, errors.WrapError(err, errors.CategoryFileSystem, "failed to read file").
			WithContext("file", f.RelativePath).Build()
	}
	if string(original) != string(f.document.Bytes()) {
		return w, errors.FileSystemError("file changed since it was scanned").
			WithContext("file", f.RelativePath).Build()
	}

	if err := os.WriteFile(w.backup, original, w.mode); err != nil {
		return w, errors.WrapError(err, errors.CategoryFileSystem, "failed to create backup").
			WithContext("file", f.RelativePath).Build()
	}
	if err := filelock.AtomicWrite(f.Path, updated.Bytes(), w.mode); err != nil {
		restore(w)
		return w, errors.WrapError(err, errors.CategoryFileSystem, "failed to write file").
			WithContext("file", f.RelativePath).Build()
	}
	return w, nil
}

// rollback restores files from their backups in reverse order.
func rollback(done []written) {
	for i := len(done) - 1; i >= 0; i-- {
		restore(done[i])
	}
}

func restore(w written) {
	// #nosec G304 -- backup path created internally
	content, err := os.ReadFile(w.backup)
	if err != nil {
		slog.Error("Failed to read backup", logfields.Backup(w.backup), logfields.Error(err))
		return
	}
	if err := filelock.AtomicWrite(w.path, content, w.mode); err != nil {
		slog.Error("Failed to restore file", logfields.File(w.path), logfields.Backup(w.backup), logfields.Error(err))
		return
	}
	_ = os.Remove(w.backup) // Best effort cleanup
}

// move renames the source, through git when the source is tracked.
func (r *Renamer) move() (bool, error) {
	src, dst := r.paths.source, r.paths.destination
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to create destination directory").
			WithContext("path", filepath.Dir(dst)).Build()
	}

	if r.opts.GitAware {
		if repo := openRepository(r.paths.base); repo != nil && repo.tracks(src) {
			if err := repo.move(src, dst); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	if err := os.Rename(src, dst); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "rename failed").
			WithContext("path", src).Build()
	}
	return false, nil
}

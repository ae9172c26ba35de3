// Package docs locates the documentation files of a project tree.
package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	derrors "git.home.luguber.info/inful/rsttools/internal/docs/errors"
	"git.home.luguber.info/inful/rsttools/internal/logfields"
	"git.home.luguber.info/inful/rsttools/internal/rst"
)

// DocFile represents a discovered documentation file.
type DocFile struct {
	Path         string // Absolute path to the file
	RelativePath string // Path relative to the base directory, slash separated
	Dir          string // Absolute directory containing the file
	Content      []byte // File content (loaded on demand)
}

// Discovery walks a documentation tree collecting files with the markup extension.
type Discovery struct {
	extension string
	excludes  []string
}

// NewDiscovery creates a discovery for files ending in extension. Directories whose
// name appears in excludes are not descended into.
func NewDiscovery(extension string, excludes []string) *Discovery {
	return &Discovery{
		extension: rst.NewScanner(extension).Extension(),
		excludes:  slices.Clone(excludes),
	}
}

// Discover returns the documentation files below root in lexical order.
// Symbolic links are never followed, so link cycles cannot trap the walk.
func (d *Discovery) Discover(root string) ([]DocFile, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrInvalidRelativePath, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", derrors.ErrDocsPathNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", derrors.ErrDocsPathNotDir, root)
	}

	var files []DocFile
	err = filepath.WalkDir(abs, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if entry.IsDir() {
			if path != abs && slices.Contains(d.excludes, entry.Name()) {
				slog.Debug("Skipping excluded directory", logfields.Path(path))
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), d.extension) {
			return nil
		}

		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return fmt.Errorf("%w: %w", derrors.ErrInvalidRelativePath, err)
		}
		files = append(files, DocFile{
			Path:         path,
			RelativePath: filepath.ToSlash(rel),
			Dir:          filepath.Dir(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", derrors.ErrDocsDirWalkFailed, err)
	}

	slog.Debug("Documentation discovered", logfields.Path(abs), logfields.Count(len(files)))
	return files, nil
}

// LoadContent loads the content of a documentation file.
func (df *DocFile) LoadContent() error {
	if df.Content != nil {
		return nil // Already loaded
	}

	content, err := os.ReadFile(df.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, df.Path, err)
	}

	df.Content = content
	return nil
}

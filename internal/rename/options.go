// Package rename moves a documentation resource and rewrites every reference to it.
package rename

import (
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/metrics"
	"git.home.luguber.info/inful/rsttools/internal/rst"
)

// Options configures a Renamer.
type Options struct {
	// Source is the file being renamed. It must exist.
	Source string
	// Destination is the new path. It must not exist. When empty the Renamer only
	// locates references and Apply is refused.
	Destination string
	// BaseDir bounds the documentation tree searched for references. Defaults to
	// the parent directory of Source.
	BaseDir string

	Extension  string
	Excludes   []string
	GitAware   bool
	KeepBackup bool

	Highlight rst.HighlightFunc
	Recorder  metrics.Recorder
}

// paths holds the validated absolute paths of a rename.
type paths struct {
	source      string
	destination string
	base        string
}

func (o Options) resolve() (paths, error) {
	var p paths
	if strings.TrimSpace(o.Source) == "" {
		return p, errors.ValidationError("source file is required").Build()
	}

	src, err := filepath.Abs(o.Source)
	if err != nil {
		return p, errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve source path").
			WithContext("path", o.Source).Build()
	}
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return p, errors.NewError(errors.CategoryNotFound, "source file must exist").
			WithContext("path", o.Source).Build()
	}
	p.source = src

	if o.Destination != "" {
		dst, err := filepath.Abs(o.Destination)
		if err != nil {
			return p, errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve destination path").
				WithContext("path", o.Destination).Build()
		}
		if _, err := os.Lstat(dst); err == nil {
			return p, errors.NewError(errors.CategoryAlreadyExists, "destination file must not exist").
				WithContext("path", o.Destination).Build()
		}
		p.destination = dst
	}

	p.base = filepath.Dir(src)
	if o.BaseDir != "" {
		if p.base, err = filepath.Abs(o.BaseDir); err != nil {
			return p, errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve base directory").
				WithContext("path", o.BaseDir).Build()
		}
	}
	if info, err := os.Stat(p.base); err != nil || !info.IsDir() {
		return p, errors.NewError(errors.CategoryNotFound, "base directory must exist").
			WithContext("path", p.base).Build()
	}

	if !within(p.base, p.source) || (p.destination != "" && !within(p.base, p.destination)) {
		return p, errors.ValidationError("base folder must contain both source and destination").
			WithContext("base", p.base).Build()
	}
	return p, nil
}

// within reports whether path lies strictly below dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// relativeTo expresses target as a slash separated path relative to dir.
func relativeTo(dir, target string) (string, error) {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

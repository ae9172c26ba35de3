// Package unref reports resources that no documentation file references.
package unref

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/rsttools/internal/docs"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/logfields"
	"git.home.luguber.info/inful/rsttools/internal/metrics"
	"git.home.luguber.info/inful/rsttools/internal/rst"
)

// Options configures a Finder.
type Options struct {
	// BaseDir is the documentation tree searched for references. When empty the
	// deepest common path of the resources is used.
	BaseDir   string
	Extension string
	Excludes  []string
	Recorder  metrics.Recorder
}

// Resource is a checked path.
type Resource struct {
	Path         string `json:"-"`
	RelativePath string `json:"path"`
	References   int    `json:"references"`
}

// Report is the outcome of a check.
type Report struct {
	BaseDir      string     `json:"base_dir"`
	FilesScanned int        `json:"files_scanned"`
	Resources    []Resource `json:"resources"`
}

// Unreferenced returns the resources nothing points at, in input order.
func (r *Report) Unreferenced() []Resource {
	var out []Resource
	for _, res := range r.Resources {
		if res.References == 0 {
			out = append(out, res)
		}
	}
	return out
}

// Finder counts references to a fixed set of resources.
type Finder struct {
	base      string
	resources []string
	discovery *docs.Discovery
	scanner   *rst.Scanner
	recorder  metrics.Recorder
}

// NewFinder validates the resource paths and resolves the base directory.
func NewFinder(resources []string, opts Options) (*Finder, error) {
	if len(resources) == 0 {
		return nil, errors.ValidationError("at least one path is required").Build()
	}

	abs := make([]string, 0, len(resources))
	for _, p := range resources {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve path").
				WithContext("path", p).Build()
		}
		abs = append(abs, a)
	}

	base := opts.BaseDir
	if base == "" {
		common, err := docs.DeepestCommonPath(abs)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot determine base directory").Build()
		}
		base = common
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve base directory").
			WithContext("path", opts.BaseDir).Build()
	}
	if info, err := os.Stat(base); err != nil || !info.IsDir() {
		return nil, errors.NewError(errors.CategoryNotFound, "base directory must exist").
			WithContext("path", base).Build()
	}

	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Finder{
		base:      base,
		resources: abs,
		discovery: docs.NewDiscovery(opts.Extension, opts.Excludes),
		scanner:   rst.NewScanner(opts.Extension),
		recorder:  recorder,
	}, nil
}

// BaseDir is the directory searched for references.
func (f *Finder) BaseDir() string {
	return f.base
}

// Find scans the documentation tree once and counts the references to every
// resource. Each file is read a single time regardless of the number of resources.
func (f *Finder) Find(ctx context.Context) (*Report, error) {
	files, err := f.discovery.Discover(f.base)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to discover documentation files").
			WithContext("path", f.base).Build()
	}

	report := &Report{BaseDir: f.base, Resources: make([]Resource, len(f.resources))}
	for i, p := range f.resources {
		report.Resources[i] = Resource{Path: p, RelativePath: displayPath(f.base, p)}
	}

	for i := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file := &files[i]
		if err := file.LoadContent(); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read documentation file").
				WithContext("file", file.RelativePath).Build()
		}
		report.FilesScanned++
		doc := rst.ParseDocument(file.Content)
		content := string(file.Content)
		file.Content = nil

		for j := range report.Resources {
			res := &report.Resources[j]
			if res.Path == file.Path {
				continue
			}
			target, err := filepath.Rel(file.Dir, res.Path)
			if err != nil {
				continue
			}
			target = filepath.ToSlash(target)
			if !rst.MayReference(content, target) {
				continue
			}
			refs, err := f.scanner.Scan(doc.Lines, target)
			if err != nil {
				return nil, rst.ClassifyScanError(err, file.RelativePath)
			}
			if len(refs) > 0 {
				res.References += len(refs)
				f.recorder.IncFilesMatched()
				for _, ref := range refs {
					f.recorder.IncReference(ref.Kind.String())
				}
			}
		}
	}

	f.recorder.IncFilesScanned(report.FilesScanned)
	slog.Debug("Reference check complete",
		logfields.Path(f.base),
		slog.Int("files_scanned", report.FilesScanned),
		logfields.Count(len(report.Unreferenced())))
	return report, nil
}

func displayPath(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

package rename

import (
	"context"
	stderrors "errors"
	"log/slog"
	"slices"

	"git.home.luguber.info/inful/rsttools/internal/docs"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/logfields"
	"git.home.luguber.info/inful/rsttools/internal/metrics"
	"git.home.luguber.info/inful/rsttools/internal/rst"
)

// FileChange holds the references found in one documentation file and, when a
// destination is known, the line rewrites that retarget them.
type FileChange struct {
	Path         string             `json:"-"`
	RelativePath string             `json:"file"`
	Target       string             `json:"target"`
	Destination  string             `json:"destination,omitempty"`
	References   []rst.Reference    `json:"references"`
	Changes      []rst.ChangeRecord `json:"changes,omitempty"`

	document rst.Document
}

// Plan is the complete set of edits a rename would perform.
type Plan struct {
	Source       string       `json:"source"`
	Destination  string       `json:"destination,omitempty"`
	BaseDir      string       `json:"base_dir"`
	FilesScanned int          `json:"files_scanned"`
	Files        []FileChange `json:"files"`
}

// HasChanges reports whether any documentation line would be rewritten.
func (p *Plan) HasChanges() bool {
	return slices.ContainsFunc(p.Files, func(f FileChange) bool { return len(f.Changes) > 0 })
}

// ReferenceCount is the number of references found across all files.
func (p *Plan) ReferenceCount() int {
	n := 0
	for _, f := range p.Files {
		n += len(f.References)
	}
	return n
}

// LineCount is the number of lines that would be rewritten.
func (p *Plan) LineCount() int {
	n := 0
	for _, f := range p.Files {
		n += len(f.Changes)
	}
	return n
}

// Renamer plans and applies a rename.
type Renamer struct {
	paths     paths
	opts      Options
	discovery *docs.Discovery
	scanner   *rst.Scanner
	projector *rst.Projector
	recorder  metrics.Recorder
}

// New validates opts and returns a Renamer.
func New(opts Options) (*Renamer, error) {
	p, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Renamer{
		paths:     p,
		opts:      opts,
		discovery: docs.NewDiscovery(opts.Extension, opts.Excludes),
		scanner:   rst.NewScanner(opts.Extension),
		projector: rst.NewProjector(opts.Extension, opts.Highlight),
		recorder:  recorder,
	}, nil
}

// Plan discovers the documentation files under the base directory and locates every
// reference to the source. Each file is scanned with the source (and destination)
// expressed relative to that file's directory.
func (r *Renamer) Plan(ctx context.Context) (*Plan, error) {
	files, err := r.discovery.Discover(r.paths.base)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to discover documentation files").
			WithContext("path", r.paths.base).Build()
	}

	plan := &Plan{
		Source:      r.paths.source,
		Destination: r.paths.destination,
		BaseDir:     r.paths.base,
	}

	for i := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		change, ok, err := r.planFile(&files[i])
		if err != nil {
			return nil, err
		}
		if ok {
			plan.FilesScanned++
		}
		if len(change.References) > 0 {
			plan.Files = append(plan.Files, change)
		}
	}

	r.recorder.IncFilesScanned(plan.FilesScanned)
	slog.Debug("Rename planned",
		logfields.Source(plan.Source),
		slog.Int("files_scanned", plan.FilesScanned),
		logfields.Count(plan.ReferenceCount()))
	return plan, nil
}

// planFile scans a single file. The boolean result reports whether the file got
// past the quick filter and was scanned.
func (r *Renamer) planFile(file *docs.DocFile) (FileChange, bool, error) {
	change := FileChange{Path: file.Path, RelativePath: file.RelativePath}

	target, err := relativeTo(file.Dir, r.paths.source)
	if err != nil {
		return change, false, errors.WrapError(err, errors.CategoryInternal, "cannot express source relative to file").
			WithContext("file", file.RelativePath).Build()
	}
	change.Target = target

	if err := file.LoadContent(); err != nil {
		return change, false, errors.WrapError(err, errors.CategoryFileSystem, "failed to read documentation file").
			WithContext("file", file.RelativePath).Build()
	}
	if !rst.MayReference(string(file.Content), target) {
		return change, false, nil
	}

	doc := rst.ParseDocument(file.Content)
	refs, err := r.scanner.Scan(doc.Lines, target)
	if err != nil {
		return change, true, rst.ClassifyScanError(err, file.RelativePath)
	}
	if len(refs) == 0 {
		return change, true, nil
	}
	change.References = refs
	change.document = doc

	r.recorder.IncFilesMatched()
	for _, ref := range refs {
		r.recorder.IncReference(ref.Kind.String())
	}

	if r.paths.destination == "" {
		return change, true, nil
	}

	dest, err := relativeTo(file.Dir, r.paths.destination)
	if err != nil {
		return change, true, errors.WrapError(err, errors.CategoryInternal, "cannot express destination relative to file").
			WithContext("file", file.RelativePath).Build()
	}
	change.Destination = dest

	records, err := r.projector.Project(doc.Lines, rst.Locations(refs), target, dest)
	if err != nil {
		if stderrors.Is(err, rst.ErrDestinationNotDocument) {
			return change, true, errors.WrapError(err, errors.CategoryValidation, "destination must keep the documentation extension").
				WithContext("file", file.RelativePath).
				WithContext("destination", dest).Build()
		}
		return change, true, errors.WrapError(err, errors.CategoryInternal, "failed to rewrite references").
			WithContext("file", file.RelativePath).Build()
	}
	change.Changes = records

	slog.Debug("References located",
		logfields.File(file.RelativePath),
		logfields.Count(len(refs)),
		slog.Int("lines", len(records)))
	return change, true, nil
}

// Contents returns the file content as scanned and as it would be after the
// planned rewrites.
func (f *FileChange) Contents() ([]byte, []byte, error) {
	updated, err := f.document.Apply(f.Changes)
	if err != nil {
		return nil, nil, err
	}
	return f.document.Bytes(), updated.Bytes(), nil
}

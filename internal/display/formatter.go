// Package display renders rsttools results for terminals and machines.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"git.home.luguber.info/inful/rsttools/internal/cascade"
	"git.home.luguber.info/inful/rsttools/internal/rename"
	"git.home.luguber.info/inful/rsttools/internal/unref"
)

// Formatter renders command results.
type Formatter interface {
	Plan(w io.Writer, plan *rename.Plan) error
	Result(w io.Writer, result *rename.Result) error
	References(w io.Writer, plan *rename.Plan) error
	Unreferenced(w io.Writer, report *unref.Report) error
	Cascade(w io.Writer, report *cascade.Report) error
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string, palette *Palette) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	default:
		if palette == nil {
			palette = NewPalette(false)
		}
		return &TextFormatter{palette: palette}
	}
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct {
	palette *Palette
}

// Plan lists every changed line under its file: the original text, then the
// rewritten text with the changed path segment highlighted. Line numbers are
// one-based.
func (f *TextFormatter) Plan(w io.Writer, plan *rename.Plan) error {
	if !plan.HasChanges() {
		_, err := fmt.Fprintf(w, "No references found. Only the file %s will be renamed\n", relative(plan.BaseDir, plan.Source))
		return err
	}
	for _, file := range plan.Files {
		if len(file.Changes) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w, f.palette.header.Sprint(file.RelativePath)); err != nil {
			return err
		}
		for _, c := range file.Changes {
			if _, err := fmt.Fprintf(w, "[%d];\t%s\n\t%s\n\n", c.Line+1, c.Original, c.Highlighted); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%s\n", f.palette.muted.Sprintf("%d line%s in %d file%s will be updated",
		plan.LineCount(), pluralize(plan.LineCount()), changedFiles(plan), pluralize(changedFiles(plan))))
	return err
}

// Result summarises an applied rename.
func (f *TextFormatter) Result(w io.Writer, result *rename.Result) error {
	how := "renamed"
	if result.GitMove {
		how = "moved in git"
	}
	if _, err := fmt.Fprintf(w, "%s → %s (%s)\n",
		relative(result.Plan.BaseDir, result.Plan.Source),
		relative(result.Plan.BaseDir, result.Plan.Destination), how); err != nil {
		return err
	}
	n := len(result.FilesUpdated)
	if _, err := fmt.Fprintf(w, "Updated %d file%s\n", n, pluralize(n)); err != nil {
		return err
	}
	for _, b := range result.Backups {
		if _, err := fmt.Fprintf(w, "  backup: %s\n", relative(result.Plan.BaseDir, b)); err != nil {
			return err
		}
	}
	return nil
}

// References prints one "file:line:column<TAB>kind<TAB>text" row per reference,
// one-based like compiler diagnostics.
func (f *TextFormatter) References(w io.Writer, plan *rename.Plan) error {
	if plan.ReferenceCount() == 0 {
		_, err := fmt.Fprintf(w, "No references to %s found\n", relative(plan.BaseDir, plan.Source))
		return err
	}
	for _, file := range plan.Files {
		for _, ref := range file.References {
			if _, err := fmt.Fprintf(w, "%s:%d:%d\t%s\t%s\n",
				file.RelativePath, ref.Line+1, ref.Column+1, ref.Kind, ref.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// Unreferenced prints the resources no documentation file references.
func (f *TextFormatter) Unreferenced(w io.Writer, report *unref.Report) error {
	for _, res := range report.Unreferenced() {
		if _, err := fmt.Fprintln(w, res.RelativePath); err != nil {
			return err
		}
	}
	return nil
}

// Cascade prints the date given to each entry.
func (f *TextFormatter) Cascade(w io.Writer, report *cascade.Report) error {
	for _, e := range report.Entries {
		var err error
		if report.DryRun {
			_, err = fmt.Fprintf(w, "%s date would be set to %s\n", e.Path, e.Date)
		} else {
			_, err = fmt.Fprintf(w, "processed %s with date %s\n", e.Path, e.Date)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter formats results as JSON. Positions are zero-based.
type JSONFormatter struct{}

func (f *JSONFormatter) Plan(w io.Writer, plan *rename.Plan) error { return encode(w, plan) }
func (f *JSONFormatter) Result(w io.Writer, result *rename.Result) error { return encode(w, result) }
func (f *JSONFormatter) References(w io.Writer, plan *rename.Plan) error { return encode(w, plan) }
func (f *JSONFormatter) Unreferenced(w io.Writer, r *unref.Report) error { return encode(w, r) }
func (f *JSONFormatter) Cascade(w io.Writer, report *cascade.Report) error { return encode(w, report) }

func encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func relative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func changedFiles(plan *rename.Plan) int {
	n := 0
	for _, f := range plan.Files {
		if len(f.Changes) > 0 {
			n++
		}
	}
	return n
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

// Package cascade assigns publication dates along chains of linked entries.
//
// Every entry gets a :date: field; an entry naming a successor in its
// :next_entry: field hands the successor a date one step earlier, so a blog
// engine sorting by date lists the chain in order.
package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/rsttools/internal/filelock"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/logfields"
	"git.home.luguber.info/inful/rsttools/internal/rst"
)

// Field names read and written by the cascade.
const (
	DateField = "date"
	NextField = "next_entry"
)

// Options configures a Cascader.
type Options struct {
	Start     time.Time
	Step      time.Duration
	Format    string
	Extension string
	DryRun    bool
}

// Entry is a dated file.
type Entry struct {
	Path     string `json:"path"`
	Date     string `json:"date"`
	Previous string `json:"previous,omitempty"`
}

// Report lists the dated entries in processing order.
type Report struct {
	DryRun   bool     `json:"dry_run"`
	Entries  []Entry  `json:"entries"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *Report) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	slog.Warn(msg)
}

// Cascader walks :next_entry: chains handing out decreasing dates. The date
// sequence continues across every chain of a single Run.
type Cascader struct {
	opts      Options
	extension string
	next      time.Time
	processed map[string]bool
}

// New returns a Cascader. Zero options select the current time, a one minute
// step and the "2006-01-02 15:04:05" layout.
func New(opts Options) *Cascader {
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}
	if opts.Step <= 0 {
		opts.Step = time.Minute
	}
	if opts.Format == "" {
		opts.Format = time.DateTime
	}
	return &Cascader{
		opts:      opts,
		extension: rst.NewScanner(opts.Extension).Extension(),
		next:      opts.Start,
		processed: make(map[string]bool),
	}
}

// Run dates every chain starting at paths. Paths that are not existing
// documentation files are reported and skipped; it is an error when none remain.
func (c *Cascader) Run(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{DryRun: c.opts.DryRun}

	var roots []string
	for _, p := range paths {
		if c.acceptable(p, report) {
			roots = append(roots, p)
		}
	}
	if len(roots) == 0 {
		return report, errors.ValidationError("no files to act on").Build()
	}

	for _, root := range roots {
		if err := c.follow(ctx, root, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// acceptable mirrors the checks applied to both command line paths and
// :next_entry: targets.
func (c *Cascader) acceptable(path string, report *Report) bool {
	if filepath.Ext(path) != c.extension {
		report.warn("%s extension expected in %s (ignored)", c.extension, path)
		return false
	}
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		report.warn("file not found: %s (ignored)", path)
		return false
	}
	return true
}

func (c *Cascader) follow(ctx context.Context, path string, report *Report) error {
	for path != "" {
		if err := ctx.Err(); err != nil {
			return err
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve path").
				WithContext("path", path).Build()
		}
		if c.processed[abs] {
			report.warn("file %s already processed (ignored)", path)
			return nil
		}
		c.processed[abs] = true

		successor, err := c.date(abs, path, report)
		if err != nil {
			return err
		}
		if successor == "" {
			return nil
		}
		if !filepath.IsAbs(successor) {
			successor = filepath.Join(filepath.Dir(abs), filepath.FromSlash(successor))
		}
		if !c.acceptable(successor, report) {
			return nil
		}
		path = successor
	}
	return nil
}

// date sets the date of one file and returns its :next_entry: value.
func (c *Cascader) date(abs, display string, report *Report) (string, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to stat file").
			WithContext("path", display).Build()
	}
	// #nosec G304 -- path validated by acceptable
	content, err := os.ReadFile(abs)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to read file").
			WithContext("path", display).Build()
	}

	doc := rst.ParseDocument(content)
	previous, _ := rst.FieldValue(doc.Lines, DateField)
	date := c.next.Format(c.opts.Format)
	c.next = c.next.Add(-c.opts.Step)

	if !c.opts.DryRun {
		doc.Lines = rst.SetField(doc.Lines, DateField, date)
		if len(content) == 0 {
			doc.FinalNewline = true
		}
		if err := filelock.AtomicWrite(abs, doc.Bytes(), info.Mode().Perm()); err != nil {
			return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to write file").
				WithContext("path", display).Build()
		}
	}

	report.Entries = append(report.Entries, Entry{Path: display, Date: date, Previous: previous})
	slog.Debug("Entry dated", logfields.Path(display), slog.String("date", date), slog.Bool("dry_run", c.opts.DryRun))

	next, _ := rst.FieldValue(doc.Lines, NextField)
	return strings.TrimSpace(next), nil
}

package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/rsttools/internal/display"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/metrics"
	"git.home.luguber.info/inful/rsttools/internal/rename"
)

// MvCmd implements the 'mv' command.
type MvCmd struct {
	Source      string `arg:"" help:"File to move (must exist)"`
	Destination string `arg:"" help:"New path (must not exist)"`

	BaseDir string `short:"b" name:"base-dir" help:"Root of the documentation tree searched for references (default: the source's directory)"`
	Force   bool   `short:"f" help:"Apply changes without asking"`
	Yes     bool   `short:"y" help:"Same as --force"`
	DryRun  bool   `name:"dry-run" help:"Show the planned changes and stop"`
	Diff    bool   `help:"Show the planned changes as a unified diff"`
	NoGit   bool   `name:"no-git" help:"Never use git to move the file"`
	Backup  bool   `help:"Keep a backup of every rewritten file"`
	Format  string `default:"text" help:"Output format (text or json)" enum:"text,json"`
}

// Run executes the mv command.
func (m *MvCmd) Run(ctx context.Context, g *Global) error {
	start := time.Now()
	outcome, err := m.run(ctx, g)
	return g.finish("mv", start, outcome, err)
}

func (m *MvCmd) run(ctx context.Context, g *Global) (metrics.OutcomeLabel, error) {
	if m.Diff && m.Format == "json" {
		return metrics.OutcomeFailed, errors.ValidationError("--diff cannot be combined with --format json").Build()
	}

	palette := g.Palette(m.Format)
	renamer, err := rename.New(rename.Options{
		Source:      m.Source,
		Destination: m.Destination,
		BaseDir:     m.BaseDir,
		Extension:   g.Config.Extension,
		Excludes:    g.Config.Exclude,
		GitAware:    g.Config.GitAware && !m.NoGit,
		KeepBackup:  g.Config.Backup || m.Backup,
		Highlight:   palette.Highlight,
		Recorder:    g.Recorder,
	})
	if err != nil {
		return metrics.OutcomeFailed, err
	}

	plan, err := renamer.Plan(ctx)
	if err != nil {
		return metrics.OutcomeFailed, err
	}

	formatter := display.NewFormatter(m.Format, palette)
	if m.Diff {
		err = display.Diff(g.Stdout, plan)
	} else {
		err = formatter.Plan(g.Stdout, plan)
	}
	if err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("formatting output: %w", err)
	}

	if m.DryRun {
		return metrics.OutcomeNoop, nil
	}

	if !m.Force && !m.Yes {
		ok, err := display.Confirm(g.Stdin, g.Stderr, "Apply these changes?")
		if err != nil {
			return metrics.OutcomeFailed, fmt.Errorf("reading confirmation: %w", err)
		}
		if !ok {
			_, _ = fmt.Fprintln(g.Stderr, "Aborted, nothing changed")
			return metrics.OutcomeAborted, nil
		}
	}

	result, err := renamer.Apply(ctx, plan)
	if err != nil {
		return metrics.OutcomeFailed, err
	}
	if err := formatter.Result(g.Stdout, result); err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("formatting output: %w", err)
	}
	return metrics.OutcomeSuccess, nil
}

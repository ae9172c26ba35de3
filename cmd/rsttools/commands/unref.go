package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/rsttools/internal/display"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/logfields"
	"git.home.luguber.info/inful/rsttools/internal/metrics"
	"git.home.luguber.info/inful/rsttools/internal/unref"
)

// UnrefCmd implements the 'unref' command.
type UnrefCmd struct {
	Resources []string      `arg:"" help:"Resource files to check"`
	BaseDir   string        `short:"b" name:"base-dir" help:"Root of the documentation tree (default: deepest common directory of the resources)"`
	Format    string        `default:"text" help:"Output format (text or json)" enum:"text,json"`
	Watch     bool          `short:"w" help:"Re-run whenever the documentation tree changes"`
	Debounce  time.Duration `default:"300ms" help:"Quiet period before a watched change triggers a re-run"`
}

// Run executes the unref command.
func (u *UnrefCmd) Run(ctx context.Context, g *Global) error {
	finder, err := unref.NewFinder(u.Resources, unref.Options{
		BaseDir:   u.BaseDir,
		Extension: g.Config.Extension,
		Excludes:  g.Config.Exclude,
		Recorder:  g.Recorder,
	})
	if err != nil {
		return g.finish("unref", time.Now(), metrics.OutcomeFailed, err)
	}
	formatter := display.NewFormatter(u.Format, g.Palette(u.Format))

	check := func(ctx context.Context) error {
		start := time.Now()
		outcome, err := u.check(ctx, finder, formatter, g)
		return g.finish("unref", start, outcome, err)
	}

	if err := check(ctx); err != nil || !u.Watch {
		return err
	}

	slog.Info("Watching for changes", logfields.Path(finder.BaseDir()))
	watcher := unref.NewWatcher(finder.BaseDir(), g.Config.Exclude, u.Debounce)
	return watcher.Run(ctx, func(ctx context.Context) {
		if err := check(ctx); err != nil && ctx.Err() == nil {
			slog.Log(ctx, checkFailureLevel(err), "Check failed", logfields.Error(err))
		}
	})
}

func (u *UnrefCmd) check(ctx context.Context, finder *unref.Finder, formatter display.Formatter, g *Global) (metrics.OutcomeLabel, error) {
	report, err := finder.Find(ctx)
	if err != nil {
		return metrics.OutcomeFailed, err
	}
	if err := formatter.Unreferenced(g.Stdout, report); err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("formatting output: %w", err)
	}
	if len(report.Unreferenced()) == 0 {
		return metrics.OutcomeNoop, nil
	}
	return metrics.OutcomeSuccess, nil
}

// checkFailureLevel picks the log level for a failed re-run while watching.
// Malformed markup is usually a file caught mid-edit and the next save re-runs.
func checkFailureLevel(err error) slog.Level {
	if errors.HasCategory(err, errors.CategoryMarkup) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

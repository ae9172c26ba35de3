package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/rsttools/internal/display"
	"git.home.luguber.info/inful/rsttools/internal/metrics"
	"git.home.luguber.info/inful/rsttools/internal/rename"
)

// RefsCmd implements the 'refs' command.
type RefsCmd struct {
	Target  string `arg:"" help:"File whose references are listed"`
	BaseDir string `short:"b" name:"base-dir" help:"Root of the documentation tree (default: the target's directory)"`
	Format  string `default:"text" help:"Output format (text or json)" enum:"text,json"`
}

// Run executes the refs command.
func (r *RefsCmd) Run(ctx context.Context, g *Global) error {
	start := time.Now()
	outcome, err := r.run(ctx, g)
	return g.finish("refs", start, outcome, err)
}

func (r *RefsCmd) run(ctx context.Context, g *Global) (metrics.OutcomeLabel, error) {
	renamer, err := rename.New(rename.Options{
		Source:    r.Target,
		BaseDir:   r.BaseDir,
		Extension: g.Config.Extension,
		Excludes:  g.Config.Exclude,
		Recorder:  g.Recorder,
	})
	if err != nil {
		return metrics.OutcomeFailed, err
	}
	plan, err := renamer.Plan(ctx)
	if err != nil {
		return metrics.OutcomeFailed, err
	}

	if err := display.NewFormatter(r.Format, g.Palette(r.Format)).References(g.Stdout, plan); err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("formatting output: %w", err)
	}
	if plan.ReferenceCount() == 0 {
		return metrics.OutcomeNoop, nil
	}
	return metrics.OutcomeSuccess, nil
}

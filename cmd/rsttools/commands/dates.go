package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/rsttools/internal/cascade"
	"git.home.luguber.info/inful/rsttools/internal/display"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/metrics"
)

// DatesCmd implements the 'dates' command.
type DatesCmd struct {
	Paths     []string `arg:"" help:"Entries whose :next_entry: chains are dated"`
	Date      string   `help:"Date for the first entry, in the configured date format (default: now)"`
	NoChanges bool     `short:"n" name:"no-changes" help:"Only report the dates that would be set"`
	Format    string   `default:"text" help:"Output format (text or json)" enum:"text,json"`
}

// Run executes the dates command.
func (d *DatesCmd) Run(ctx context.Context, g *Global) error {
	start := time.Now()
	outcome, err := d.run(ctx, g)
	return g.finish("dates", start, outcome, err)
}

func (d *DatesCmd) run(ctx context.Context, g *Global) (metrics.OutcomeLabel, error) {
	opts := cascade.Options{
		Step:      g.Config.DateStepDuration(),
		Format:    g.Config.DateFormat,
		Extension: g.Config.Extension,
		DryRun:    d.NoChanges,
	}
	if d.Date != "" {
		first, err := time.ParseInLocation(g.Config.DateFormat, d.Date, time.Local)
		if err != nil {
			return metrics.OutcomeFailed, errors.WrapError(err, errors.CategoryValidation, "invalid --date").
				WithContext("format", g.Config.DateFormat).Build()
		}
		opts.Start = first
	}

	report, err := cascade.New(opts).Run(ctx, d.Paths)
	if err != nil {
		return metrics.OutcomeFailed, err
	}
	if err := display.NewFormatter(d.Format, g.Palette(d.Format)).Cascade(g.Stdout, report); err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("formatting output: %w", err)
	}
	if d.NoChanges {
		return metrics.OutcomeNoop, nil
	}
	return metrics.OutcomeSuccess, nil
}

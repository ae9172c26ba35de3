package commands

import (
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/rsttools/internal/config"
	"git.home.luguber.info/inful/rsttools/internal/display"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/logfields"
	"git.home.luguber.info/inful/rsttools/internal/metrics"
)

// Global is the state shared by every subcommand, filled in by CLI.AfterApply.
type Global struct {
	Config   *config.Config
	Recorder metrics.Recorder

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	useColor    bool
	prom        *metrics.PrometheusRecorder
	metricsFile string
}

// NewGlobal returns a Global bound to the given streams.
func NewGlobal(stdin io.Reader, stdout, stderr io.Writer) *Global {
	return &Global{
		Config:   config.Default(),
		Recorder: metrics.NoopRecorder{},
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path (default .rsttools.yaml, optional)"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	LogLevel    string           `name:"log-level" help:"Log level (debug, info, warn, error); overrides the configuration"`
	Color       string           `help:"Colorize output (auto, always, never); overrides the configuration"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics to this textfile when the command ends"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Mv    MvCmd    `cmd:"" help:"Move a file and rewrite every reference to it"`
	Refs  RefsCmd  `cmd:"" help:"List every reference to a file"`
	Unref UnrefCmd `cmd:"" help:"List resources no documentation file references"`
	Dates DatesCmd `cmd:"" help:"Set :date: along :next_entry: chains"`
	Init  InitCmd  `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing: it loads the configuration and sets up
// logging, color and metrics once. An explicit --config must exist, except for
// init which creates it.
func (c *CLI) AfterApply(kctx *kong.Context, g *Global) error {
	path, required := c.Config, kctx.Command() != "init"
	if path == "" {
		path, required = config.DefaultPath, false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return errors.ConfigError("failed to load configuration").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if c.LogLevel != "" {
		if cfg.LogLevel, err = config.ParseLogLevel(c.LogLevel); err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid --log-level").Build()
		}
	}
	if c.Color != "" {
		if cfg.Color, err = config.ParseColorMode(c.Color); err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid --color").Build()
		}
	}
	g.Config = cfg

	level := cfg.LogLevel.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(g.Stderr, opts)
	if cfg.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(g.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	g.useColor = display.UseColor(cfg.Color, g.Stdout)

	if c.MetricsFile != "" {
		g.prom = metrics.NewPrometheusRecorder(nil)
		g.Recorder = g.prom
		g.metricsFile = c.MetricsFile
	}
	return nil
}

// Palette returns the text colors for stdout. Machine readable formats never
// get color.
func (g *Global) Palette(format string) *display.Palette {
	return display.NewPalette(g.useColor && format != "json")
}

// finish records the command's duration and outcome and flushes the metrics
// textfile. It returns err unchanged.
func (g *Global) finish(command string, start time.Time, outcome metrics.OutcomeLabel, err error) error {
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	elapsed := time.Since(start)
	g.Recorder.ObserveCommandDuration(command, elapsed)
	g.Recorder.IncCommandOutcome(command, outcome)
	slog.Debug("Command finished",
		slog.String("command", command),
		slog.String("outcome", string(outcome)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))

	if g.prom != nil {
		if werr := g.prom.WriteTextfile(g.metricsFile); werr != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(g.metricsFile), logfields.Error(werr))
		}
	}
	return err
}

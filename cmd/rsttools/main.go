package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/rsttools/cmd/rsttools/commands"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
	"git.home.luguber.info/inful/rsttools/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli := &commands.CLI{}
	global := commands.NewGlobal(os.Stdin, os.Stdout, os.Stderr)
	parser := kong.Must(cli,
		kong.Name("rsttools"),
		kong.Description("Maintain reStructuredText documentation trees: move files, find and rewrite references, cascade dates."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// Usage mistakes get kong's usage output; failures while loading the
		// configuration are classified and handled below.
		if _, ok := errors.AsClassified(err); !ok {
			parser.FatalIfErrorf(err)
		}
	} else {
		err = kctx.Run(cli)
	}
	if err != nil {
		cancel()
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

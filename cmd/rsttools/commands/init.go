package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/rsttools/internal/config"
	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = config.DefaultPath
	}
	_, _ = fmt.Fprintf(g.Stdout, "Writing configuration to %s\n", path)
	if err := config.Init(path, i.Force); err != nil {
		category := errors.CategoryFileSystem
		if _, statErr := os.Stat(path); statErr == nil && !i.Force {
			category = errors.CategoryAlreadyExists
		}
		return errors.WrapError(err, category, "initialization failed").WithContext("path", path).Build()
	}
	_, _ = fmt.Fprintln(g.Stdout, "initialized successfully")
	return nil
}

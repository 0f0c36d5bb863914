package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/codeglass/mypyscan/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "mypyscan",
		Usage:   "Run mypy against Python sources and report structured diagnostics",
		Version: version.Version(),
		Description: `mypyscan drives the mypy type checker the way an editor does:
it batches source files, runs mypy once per batch, and turns the raw output
into position-anchored diagnostics.

Examples:
  mypyscan check app.py
  mypyscan check src/
  mypyscan check --format json .`,
		Commands: []*cli.Command{
			checkCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}

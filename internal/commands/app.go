package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/BuzzLyutic/todotxt-api/pkg/logutils"
)

// NewApp builds the todofmt command tree.
func NewApp(version string) *cli.Command {
	flags := &Flags{}

	app := &cli.Command{
		Name:      "todofmt",
		Usage:     "Format, parse and schedule todo.txt files",
		UsageText: "todofmt [global options] command [command options] [file...]",
		Version:   version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal)",
				Sources:     cli.EnvVars("LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.BoolFlag{
				Name:        "keep-line",
				Usage:       "keep the source line in parsed records",
				Sources:     cli.EnvVars("TODO_KEEP_LINE"),
				Destination: &flags.KeepLine,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := logutils.New(flags.LogLevel, "")
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			flags.Logger = logger
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if flags.Logger != nil {
				_ = flags.Logger.Sync()
			}
			return nil
		},
	}

	app = NewFmtCmd(flags).Register(app)
	app = NewParseCmd(flags).Register(app)
	app = NewNextCmd(flags).Register(app)

	return app
}

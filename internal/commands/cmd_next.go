package commands

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

type NextCmd struct {
	flags *Flags

	// flags
	date string
}

// NewNextCmd creates a new next command
func NewNextCmd(flags *Flags) *NextCmd {
	return &NextCmd{flags: flags}
}

// Register adds the next command to the application
func (cmd *NextCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "next",
		Usage:     "Print the next occurrence of recurring tasks",
		UsageText: "todofmt next [--date YYYY-MM-DD] [file...]",
		Description: `For every line with a rec: tag prints the task that follows it, as if the
line had been completed on --date (default: the finish date of the line, or
today). Lines without rec: are skipped.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "date",
				Usage:       "completion date (YYYY-MM-DD)",
				Destination: &cmd.date,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *NextCmd) run(ctx context.Context, c *cli.Command) error {
	var fixed *civil.Date
	if cmd.date != "" {
		d, err := civil.ParseDate(cmd.date)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", cmd.date, err)
		}
		fixed = &d
	}
	today := civil.DateOf(time.Now())

	parser := cmd.flags.Parser()
	logger := cmd.flags.logger()
	out := bufio.NewWriter(output(c))

	err := eachLine(c, func(name string, n int, line string) error {
		if line == "" {
			return nil
		}
		t := parser.Parse(line)

		completed := today
		switch {
		case fixed != nil:
			completed = *fixed
		case t.FinishDate != nil:
			completed = *t.FinishDate
		}

		next, ok := t.Recur(completed)
		if !ok {
			logger.Debug("not recurring", zap.String("file", name), zap.Int("line", n))
			return nil
		}
		_, err := fmt.Fprintln(out, next.String())
		return err
	})
	if err != nil {
		return err
	}
	return out.Flush()
}

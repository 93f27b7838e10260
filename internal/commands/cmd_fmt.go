package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// ErrNotCanonical is returned by fmt --check when some lines would change.
var ErrNotCanonical = errors.New("not in canonical form")

type FmtCmd struct {
	flags *Flags

	// flags
	check bool
}

// NewFmtCmd creates a new fmt command
func NewFmtCmd(flags *Flags) *FmtCmd {
	return &FmtCmd{flags: flags}
}

// Register adds the fmt command to the application
func (cmd *FmtCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "fmt",
		Usage:     "Rewrite todo.txt lines in canonical form",
		UsageText: "todofmt fmt [--check] [file...]",
		Description: `Reads todo.txt lines from the given files (or stdin) and prints each one in
canonical form: header first, then the subject, then due:, t:, rec: and the
remaining key:value tags sorted by key. Blank lines are kept.

With --check nothing is printed; lines that would change are reported and the
command fails.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "check",
				Usage:       "report lines that are not in canonical form",
				Destination: &cmd.check,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *FmtCmd) run(ctx context.Context, c *cli.Command) error {
	parser := cmd.flags.Parser()
	logger := cmd.flags.logger()
	out := bufio.NewWriter(output(c))
	changed := 0

	err := eachLine(c, func(name string, n int, line string) error {
		formatted := line
		if line != "" {
			formatted = parser.Parse(line).String()
		}
		// reordering keeps the length; a shorter line means text was dropped
		if len(formatted) < len(line) {
			logger.Warn("canonical form drops text",
				zap.String("file", name),
				zap.Int("line", n),
				zap.String("input", line),
				zap.String("output", formatted),
			)
		}

		if cmd.check {
			if formatted != line {
				changed++
				fmt.Fprintf(errOutput(c), "%s:%d: %s\n", name, n, formatted)
			}
			return nil
		}

		_, err := fmt.Fprintln(out, formatted)
		return err
	})
	if err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return err
	}

	logger.Debug("fmt done", zap.Int("changed", changed), zap.Bool("check", cmd.check))
	if changed > 0 {
		return fmt.Errorf("%w: %d line(s)", ErrNotCanonical, changed)
	}
	return nil
}

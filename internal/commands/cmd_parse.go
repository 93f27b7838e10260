package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/BuzzLyutic/todotxt-api/pkg/todotxt"
)

type ParseCmd struct {
	flags *Flags

	// flags
	output string
}

// NewParseCmd creates a new parse command
func NewParseCmd(flags *Flags) *ParseCmd {
	return &ParseCmd{flags: flags}
}

// Register adds the parse command to the application
func (cmd *ParseCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "parse",
		Usage:     "Print parsed todo.txt lines as JSON or YAML",
		UsageText: "todofmt parse [--output json|yaml] [file...]",
		Description: `Parses every non-blank line and prints the resulting records.

JSON output is one object per line. YAML output is a single sequence.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output format (json, yaml)",
				Value:       "json",
				Destination: &cmd.output,
				Validator: func(s string) error {
					if s != "json" && s != "yaml" {
						return fmt.Errorf("unknown output format %q", s)
					}
					return nil
				},
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ParseCmd) run(ctx context.Context, c *cli.Command) error {
	parser := cmd.flags.Parser()

	var tasks []todotxt.Task
	err := eachLine(c, func(_ string, _ int, line string) error {
		if line != "" {
			tasks = append(tasks, parser.Parse(line))
		}
		return nil
	})
	if err != nil {
		return err
	}

	out := output(c)
	switch cmd.output {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if tasks == nil {
			tasks = []todotxt.Task{}
		}
		if err := enc.Encode(tasks); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(out)
		for _, t := range tasks {
			if err := enc.Encode(t); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}
}

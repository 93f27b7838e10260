package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const maxLineBytes = 1 << 20

// eachLine calls fn for every line of the files named in the arguments,
// or of the command's input when there are none. Line numbers start at 1
// and restart for every file.
func eachLine(c *cli.Command, fn func(name string, n int, line string) error) error {
	if c.Args().Len() == 0 {
		r, err := input(c)
		if err != nil {
			return err
		}
		return scanLines("-", r, fn)
	}

	for _, path := range c.Args().Slice() {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		err = scanLines(path, f, fn)
		_ = f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func scanLines(name string, r io.Reader, fn func(name string, n int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)

	n := 0
	for sc.Scan() {
		n++
		if err := fn(name, n, strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}

func input(c *cli.Command) (io.Reader, error) {
	r := c.Root().Reader
	if r == nil {
		r = os.Stdin
	}
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, errors.New("no input provided (stdin is a terminal); pass files or pipe todo.txt lines")
	}
	return r, nil
}

func output(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errOutput(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

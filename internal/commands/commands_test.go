package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/BuzzLyutic/todotxt-api/pkg/todotxt"
)

type registrar interface {
	Register(app *cli.Command) *cli.Command
}

func run(t *testing.T, cmd registrar, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := &cli.Command{
		Name:      "todofmt",
		Reader:    strings.NewReader(stdin),
		Writer:    &out,
		ErrWriter: &errOut,
	}
	cmd.Register(app)

	err := app.Run(context.Background(), append([]string{"todofmt"}, args...))
	return out.String(), errOut.String(), err
}

func TestFmt(t *testing.T) {
	stdin := "(A) call mom z:1 due:2016-04-01 a:2\n\nx 2016-03-28 2016-03-24 done\r\nrec:1w water\n"

	out, _, err := run(t, NewFmtCmd(&Flags{}), stdin, "fmt")
	require.NoError(t, err)
	assert.Equal(t, "(A) call mom due:2016-04-01 a:2 z:1\n\nx 2016-03-28 2016-03-24 done\nwater rec:1w\n", out)
}

func TestFmt_Check(t *testing.T) {
	t.Run("canonical input", func(t *testing.T) {
		out, errOut, err := run(t, NewFmtCmd(&Flags{}), "(A) call mom\nbuy milk +groceries\n", "fmt", "--check")
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Empty(t, errOut)
	})

	t.Run("reports changed lines", func(t *testing.T) {
		_, errOut, err := run(t, NewFmtCmd(&Flags{}), "ok\nb:2 a:1 tags\n", "fmt", "--check")
		assert.ErrorIs(t, err, ErrNotCanonical)
		assert.Equal(t, "-:2: tags a:1 b:2\n", errOut)
	})
}

func TestFmt_WarnsOnDroppedText(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	flags := &Flags{Logger: zap.New(core)}

	out, _, err := run(t, NewFmtCmd(flags), "pay due:tomorrow\nb:2 a:1 tags\n", "fmt")
	require.NoError(t, err)
	assert.Equal(t, "pay\ntags a:1 b:2\n", out)

	entries := logs.FilterMessage("canonical form drops text").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "-", fields["file"])
	assert.EqualValues(t, 1, fields["line"])
	assert.Equal(t, "pay due:tomorrow", fields["input"])
	assert.Equal(t, "pay", fields["output"])
}

func TestFmt_Files(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "todo.txt")
	second := filepath.Join(dir, "done.txt")
	require.NoError(t, os.WriteFile(first, []byte("k:v open\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("x closed\n"), 0o644))

	out, _, err := run(t, NewFmtCmd(&Flags{}), "ignored\n", "fmt", first, second)
	require.NoError(t, err)
	assert.Equal(t, "open k:v\nx closed\n", out)

	_, _, err = run(t, NewFmtCmd(&Flags{}), "", "fmt", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestParse_JSON(t *testing.T) {
	out, _, err := run(t, NewParseCmd(&Flags{}), "(A) call @phone rec:+1w\n\nbuy milk\n", "parse")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var task todotxt.Task
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &task))
	assert.Equal(t, todotxt.Parse("(A) call @phone rec:+1w"), task)
	assert.JSONEq(t, `{"subject":"buy milk","priority":"","finished":false}`, lines[1])
}

func TestParse_YAML(t *testing.T) {
	out, _, err := run(t, NewParseCmd(&Flags{KeepLine: true}), "2016-03-24 call +family rec:2w\n", "parse", "--output", "yaml")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2016-03-24 call +family rec:2w", got[0]["line"])
	assert.Equal(t, "call +family", got[0]["subject"])
	assert.Equal(t, "2w", got[0]["recurrence"])
	assert.Equal(t, []any{"family"}, got[0]["projects"])
}

func TestParse_UnknownFormat(t *testing.T) {
	_, _, err := run(t, NewParseCmd(&Flags{}), "a\n", "parse", "--output", "xml")
	assert.Error(t, err)
}

func TestNext(t *testing.T) {
	stdin := strings.Join([]string{
		"2016-03-01 water @home due:2016-04-05 rec:1w",
		"once due:2016-04-05",
		"(A) pay rent due:2016-04-05 t:2016-04-03 rec:+1m",
	}, "\n")

	out, _, err := run(t, NewNextCmd(&Flags{}), stdin, "next", "--date", "2016-04-07")
	require.NoError(t, err)
	assert.Equal(t,
		"2016-04-07 water @home due:2016-04-14 rec:1w\n"+
			"(A) 2016-04-07 pay rent due:2016-05-05 t:2016-05-03 rec:+1m\n",
		out)
}

func TestNext_UsesFinishDate(t *testing.T) {
	out, _, err := run(t, NewNextCmd(&Flags{}), "x 2016-04-06 (B) stretch rec:2d\n", "next")
	require.NoError(t, err)
	assert.Equal(t, "(B) 2016-04-06 stretch due:2016-04-08 rec:2d\n", out)
}

func TestNext_BadDate(t *testing.T) {
	_, _, err := run(t, NewNextCmd(&Flags{}), "a rec:1d\n", "next", "--date", "tomorrow")
	assert.Error(t, err)
}

func TestNewApp(t *testing.T) {
	var out bytes.Buffer
	app := NewApp("test")
	app.Reader = strings.NewReader("b:2 a:1 task\n")
	app.Writer = &out

	err := app.Run(context.Background(), []string{"todofmt", "--log-level", "error", "fmt"})
	require.NoError(t, err)
	assert.Equal(t, "task a:1 b:2\n", out.String())

	bad := NewApp("test")
	bad.Writer = &bytes.Buffer{}
	err = bad.Run(context.Background(), []string{"todofmt", "--log-level", "loud", "fmt"})
	assert.Error(t, err)
}

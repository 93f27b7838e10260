package commands

import (
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todotxt-api/pkg/todotxt"
)

type Flags struct {
	LogLevel string
	KeepLine bool

	// Logger is created in the Before hook and available to all commands
	Logger *zap.Logger
}

// Parser returns the line parser configured by the global flags.
func (f *Flags) Parser() todotxt.Parser {
	return todotxt.Parser{KeepLine: f.KeepLine}
}

func (f *Flags) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

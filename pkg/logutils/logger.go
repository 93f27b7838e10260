package logutils

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a zap logger at the given level.
// Logs go to stderr unless file is set.
//
// The level parameter can be one of: debug, info, warn, error, fatal.
// Debug switches to the development (console) encoder.
func New(level string, file string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if level == "debug" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl

	if file != "" {
		cfg.OutputPaths = []string{file}
		cfg.ErrorOutputPaths = []string{file}
	}

	return cfg.Build()
}

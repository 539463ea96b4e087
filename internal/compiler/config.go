// Package compiler turns a parsed brisk file into bytecode segments:
// it registers the file's signatures, links in the headers of other
// modules, checks the program and lowers every method body.
package compiler

import (
	"log/slog"

	"github.com/you-not-fish/brisk/internal/bytecode"
	"github.com/you-not-fish/brisk/internal/logger"
	"github.com/you-not-fish/brisk/internal/syntax"
)

// WarningHandler is called for each non-fatal diagnostic.
type WarningHandler func(pos syntax.Pos, msg string)

// Config specifies the configuration for compilation.
type Config struct {
	// Warn is called for each warning.
	// If nil, warnings are only logged.
	Warn WarningHandler

	// Includes are the headers of the modules the file links against,
	// in dependency order.
	Includes []*bytecode.Header

	// HideHeader suppresses the exported header: the metadata segment
	// carries {"hidden":true} instead.
	HideHeader bool

	// Logger receives debug output about compilation phases.
	// If nil, logger.Default() is used.
	Logger *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.Default()
}

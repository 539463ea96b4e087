// Package logger provides the structured logging used by the brisk
// compiler and its command.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

var defaultLogger *slog.Logger

// LogLevel is a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]LogLevel{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// ParseLevel returns the level called name (debug, info, warn or error).
func ParseLevel(name string) (LogLevel, error) {
	if l, ok := levelNames[strings.ToLower(name)]; ok {
		return l, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// Config holds logger configuration.
type Config struct {
	Level     LogLevel
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
	LogFile   string // if set, logs are appended to this file instead of Output
}

// DefaultConfig returns the default configuration: warnings and errors,
// as text, on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// New returns a logger for cfg. If cfg names a log file, the returned
// closer closes it; otherwise it is a no-op.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	var closer io.Closer = nopCloser{}
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		output, closer = f, f
	}

	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(handler), closer, nil
}

// Init makes a logger for cfg the package default and the slog default.
func Init(cfg Config) (io.Closer, error) {
	l, closer, err := New(cfg)
	if err != nil {
		return nil, err
	}
	defaultLogger = l
	slog.SetDefault(l)
	return closer, nil
}

// Default returns the logger installed by Init. Before Init it returns a
// logger that discards everything.
func Default() *slog.Logger {
	if defaultLogger != nil {
		return defaultLogger
	}
	return Discard()
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Info logs on the default logger.
func Info(msg string, args ...any) { Default().Info(msg, args...) }

// Compiler-specific helpers

// LogPhase logs the start of a compilation phase on l and returns a
// function that logs its completion with the elapsed time.
//
//	defer logger.LogPhase(l, "prescan")()
func LogPhase(l *slog.Logger, phase string) func() {
	start := time.Now()
	l.Debug("starting compilation phase", "phase", phase)
	return func() {
		l.Debug("completed compilation phase", "phase", phase, "duration", time.Since(start))
	}
}

// LogWarning logs a compilation warning.
func LogWarning(l *slog.Logger, file string, line int, msg string) {
	l.Warn("compilation warning",
		"file", file,
		"line", line,
		"message", msg)
}

// LogError logs a fatal compilation error.
func LogError(l *slog.Logger, phase string, file string, msg string) {
	l.Error("compilation error",
		"phase", phase,
		"file", file,
		"message", msg)
}

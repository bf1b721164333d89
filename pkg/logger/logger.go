// Package logger provides structured logging for skill-tracker.
//
// Every stateful component (stores, tracker, watcher) receives a Logger
// instead of reaching for a global. Output format, level and destination
// come from the logging section of the configuration.
//
// Example usage:
//
//	log := logger.New(logger.Config{
//	    Level:  "info",
//	    Output: "stderr",
//	    Format: "text",
//	})
//	log.Info("session logged", "skill_id", id, "duration", 45)
//	log.Component("store").Error("write failed", "error", err)
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// Supported levels and formats, as written in configuration.
var (
	Levels  = []string{"debug", "info", "warn", "error"}
	Formats = []string{"text", "json"}
)

// Logger provides structured logging with levels and fields.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, args ...any)

	// Info logs an informational message with optional key-value pairs.
	Info(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	Error(msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger

	// Component returns a logger tagged with the given component name.
	Component(name string) Logger
}

// Config contains logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string

	// Output is the destination (stdout, stderr, or file path).
	// Ignored when Writer is set.
	Output string

	// Format is the output format (text, json).
	Format string

	// Writer overrides Output. Used by tests to capture log lines.
	Writer io.Writer
}

// slogLogger adapts a *slog.Logger to Logger.
type slogLogger struct {
	l *slog.Logger
}

// New creates a logger from cfg.
//
// A file Output that cannot be opened falls back to stderr and the
// failure is reported there once.
func New(cfg Config) Logger {
	w := cfg.Writer
	var openErr error
	if w == nil {
		w, openErr = openOutput(cfg.Output)
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	log := &slogLogger{l: slog.New(h)}
	if openErr != nil {
		log.Warn("log output unavailable, using stderr", "error", openErr)
	}
	return log
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

func (s *slogLogger) Component(name string) Logger {
	return s.With("component", name)
}

// ValidLevel reports whether level is one of Levels.
func ValidLevel(level string) bool {
	return slices.Contains(Levels, level)
}

// ValidFormat reports whether format is one of Formats.
func ValidFormat(format string) bool {
	return slices.Contains(Formats, format)
}

// parseLevel maps a configured level to slog. "warning" is accepted as an
// alias and anything unrecognized logs at info.
func parseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// openOutput resolves "stdout", "stderr" (the default) or a file path
// opened for appending. On error it returns stderr with the cause.
func openOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	}

	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) // nolint:gosec
	if err != nil {
		return os.Stderr, fmt.Errorf("open log file %s: %w", output, err)
	}
	return f, nil
}

// Default returns a logger writing info-level text to stderr.
func Default() Logger {
	return New(Config{Level: "info"})
}

// Noop returns a logger that discards all log messages.
func Noop() Logger {
	return &slogLogger{l: slog.New(slog.DiscardHandler)}
}

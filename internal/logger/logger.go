// Package logger builds the slog logger used for diagnostics.
// User-facing messages go to the console writer, not through here.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects level, destination and format.
type Options struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	File   string `yaml:"file"`   // "" or "-" for stderr, os.DevNull to discard
	Format string `yaml:"format"` // text or json
}

// ParseLevel maps a level name to a slog level. The empty string means info.
func ParseLevel(option string) (slog.Level, bool) {
	switch strings.ToLower(option) {
	case "", "info":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New returns a logger for opts. Invalid settings fall back to defaults and
// the fallback is reported through the returned logger.
func New(opts Options) *slog.Logger {
	return newWithStderr(opts, os.Stderr)
}

func newWithStderr(opts Options, stderr io.Writer) *slog.Logger {
	level, ok := ParseLevel(opts.Level)
	if !ok {
		bad := opts.Level
		opts.Level = ""
		l := newWithStderr(opts, stderr)
		l.Warn("could not parse logger level", "level", bad)
		return l
	}
	handlerOpts := slog.HandlerOptions{Level: level}

	format := strings.ToLower(opts.Format)
	if format != "" && format != "text" && format != "json" {
		bad := opts.Format
		opts.Format = "text"
		l := newWithStderr(opts, stderr)
		l.Warn("could not parse logger format", "format", bad)
		return l
	}

	var output io.Writer
	switch opts.File {
	case "", "-":
		output = stderr
	case os.DevNull:
		return slog.New(slog.DiscardHandler)
	default:
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			opts.File = ""
			l := newWithStderr(opts, stderr)
			l.Warn("could not open logger file", "err", err)
			return l
		}
		output = f
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(output, &handlerOpts))
	}
	return slog.New(slog.NewTextHandler(output, &handlerOpts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

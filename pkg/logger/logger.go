package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Options controls the handler built by Init.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// Init installs the process logger. Production always logs JSON.
func Init(env string, opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := parseLevel(opts.Level)
	if opts.Level == "" && env != "production" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if env == "production" || strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	defaultLogger = slog.New(handler).With("service", "admin-dashboard")
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development", Options{})
	}
	return defaultLogger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

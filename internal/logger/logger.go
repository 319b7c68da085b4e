// Package logger builds the JSON slog logger used across the service.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup returns a JSON logger writing to w at the given level name
// ("debug", "info", "warn", "error"). Unknown names fall back to info.
func Setup(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// SetupDefault installs the logger as the slog default and returns it.
func SetupDefault(w io.Writer, level string) *slog.Logger {
	l := Setup(w, level)
	slog.SetDefault(l)
	return l
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard is a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

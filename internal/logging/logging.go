// Package logging builds the slog logger used by the todo CLI.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// LevelForVerbosity maps the number of -v flags to a level:
// none logs warnings and errors, -v adds info, -vv adds debug.
func LevelForVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity >= 2:
		return slog.LevelDebug
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// ParseLevel converts a configured level name. Unknown names fall back
// to the given default.
func ParseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("component", "todo")
}

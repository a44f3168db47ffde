// Package logging builds the structured logger shared by cmd/gitam and
// internal/am. It wraps log/slog the same way across every entry point so
// that log level is the only thing callers have to think about.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a slog.Logger writing JSON records to stderr at the
// given level. Unrecognized levels fall back to info rather than erroring,
// since log level is advisory, not a correctness concern.
func NewLogger(level string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(h)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

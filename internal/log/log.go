// Package log provides the logging infrastructure for the chatbot service.
//
// Loggers are injected, not global: each component receives a *slog.Logger
// via its constructor and adds context with logger.With("component", …).
// Tests use NewNop or capture output with NewWithWriter.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config defines logger configuration options.
type Config struct {
	// Level is the minimum level as a string: "debug", "info", "warn",
	// "error". Empty or unrecognized values mean info.
	Level string

	// JSON enables JSON output. Default is human-readable text.
	JSON bool
}

// New creates a logger writing to os.Stderr.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a logger writing to w. Useful in tests:
//
//	var buf bytes.Buffer
//	logger := log.NewWithWriter(&buf, log.Config{Level: "debug"})
func NewWithWriter(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// NewNop returns a logger that discards all output.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to its slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
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

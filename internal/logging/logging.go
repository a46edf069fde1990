// Package logging builds the application's slog logger. The terminal
// belongs to the TUI, so diagnostics go to a file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "MATHIA_LOG_LEVEL"

// Config configures New.
type Config struct {
	// Level is the minimum level written. Zero is info.
	Level slog.Level

	// File is the log file path. Empty discards everything.
	File string

	// JSON selects JSON records instead of key=value text.
	JSON bool
}

// ConfigFromEnv returns a Config for file with the level from
// MATHIA_LOG_LEVEL. Unknown levels fall back to info.
func ConfigFromEnv(file string) Config {
	level, _ := ParseLevel(os.Getenv(EnvLevel))
	return Config{Level: level, File: file}
}

// ParseLevel parses debug, info, warn or error, ignoring case. The empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New opens the log file, creating its directory, and returns a logger
// writing to it. The returned closer closes the file.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	if cfg.File == "" {
		return Discard(), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewWriter(f, cfg), f, nil
}

// NewWriter returns a logger writing to w.
func NewWriter(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Package gd2log configures logging for the harness and CLI: slog text
// records to stderr, mirrored to a log file when one is configured.
package gd2log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config holds configuration for creating a new Logger.
type Config struct {
	// Path of the log file. Empty disables file logging.
	Path string
	// Level is the minimum level logged.
	Level slog.Level
}

// Logger wraps slog.Logger with an optional log file.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New creates a Logger writing to stderr and, when cfg.Path is set, to the
// log file (created or appended to).
func New(cfg Config) (*Logger, error) {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level})

	logger := &Logger{}
	if cfg.Path == "" {
		logger.Logger = slog.New(stderrHandler)
		return logger, nil
	}

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: cfg.Level})

	logger.Logger = slog.New(&multiHandler{
		handlers: []slog.Handler{stderrHandler, fileHandler},
	})
	logger.file = file
	return logger, nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel parses a level name like "DEBUG" or "warning".
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// multiHandler sends log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			// Ignore errors - we want to send to all handlers
			h.Handle(ctx, r)
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

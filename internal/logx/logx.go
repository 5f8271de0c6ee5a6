// Package logx configures the process-wide slog logger.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps a config string onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup installs a text logger on w as the slog default and returns it.
// An unknown level falls back to info and is reported through the new logger.
func Setup(w io.Writer, level string) *slog.Logger {
	lvl, err := ParseLevel(level)
	logger := New(w, lvl)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("log level", "err", err)
	}
	return logger
}

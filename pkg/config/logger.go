package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a *slog.Logger writing to w and sets it as the default
// logger via slog.SetDefault.
//
// Format "json" produces structured JSON output.
// Format "text" produces human-readable output.
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
func NewLogger(w io.Writer, cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

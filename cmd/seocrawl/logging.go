package main

import (
	"io"
	"log/slog"

	"github.com/IshaanNene/SEOCrawl/internal/config"
)

// setupLogger creates a structured logger writing to every w.
func setupLogger(cfg *config.Config, w ...io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	out := io.MultiWriter(w...)
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/harborbank/core/internal/config"
)

// New builds the process-wide slog.Logger from the logging config. Unknown
// levels and formats fall back to info-level text output rather than failing
// startup.
func New(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// parseLevel accepts slog's level vocabulary ("debug", "INFO", "warn+2", ...).
func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}

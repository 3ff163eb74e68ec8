package bootstrap

import (
	"io"
	"log/slog"
	"os"

	"github.com/abgdnv/productstore/pkg/config"
	"github.com/abgdnv/productstore/pkg/logger"
)

// NewLogger creates a new slog.Logger instance writing JSON to stdout at the configured level.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	logLevel := cfg.SlogLevel()
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	logHandler := logger.NewContextHandler(slog.NewJSONHandler(w, loggerOpts))
	return slog.New(logHandler)
}

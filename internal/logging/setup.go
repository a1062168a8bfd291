// Package logging configures the process-wide slog logger. Grounded on the
// prior internal/pkg/logging.SetupLogger, reduced to a single stdout
// handler: JSON when the config asks for it (for log-aggregator ingestion),
// text otherwise. The prior Yandex Cloud Logging API client is not carried
// over, since this pipeline has no cloud logging target in scope.
package logging

import (
	"log/slog"
	"os"

	"github.com/oddsforge/arbiter/internal/config"
)

// Setup installs the global slog logger for serviceName and returns it.
func Setup(cfg config.LoggingConfig, serviceName string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With("service", serviceName)
	slog.SetDefault(logger)
	return logger
}

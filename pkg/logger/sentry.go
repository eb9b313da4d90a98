package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// ErrorsOnly limits breadcrumb logs to error level; warnings stay local.
	ErrorsOnly bool `env:"SENTRY_ERRORS_ONLY" envDefault:"false"`
}

// newSentryHandler returns nil when Sentry is not configured or fails to
// initialize. Init failures are reported through fallback.
func newSentryHandler(cfg SentryConfig, fallback slog.Handler) slog.Handler {
	if cfg.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(fallback).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return nil
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.ErrorsOnly {
		logLevel = []slog.Level{slog.LevelError}
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())
}

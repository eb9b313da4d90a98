package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls the process-wide logger.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig
}

// ParseLevel maps a textual level to slog.Level. Unknown values yield info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New builds a logger writing to stdout, forwarding warnings and errors to
// Sentry when a DSN is configured.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(newHandler(os.Stdout, cfg), extractors...))
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var base slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	if sh := newSentryHandler(cfg.Sentry, base); sh != nil {
		return newMultiHandler(base, sh)
	}
	return base
}

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

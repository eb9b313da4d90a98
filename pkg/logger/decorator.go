package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls a request-scoped attribute out of ctx.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// LogHandlerDecorator adds context-extracted attributes to every record.
type LogHandlerDecorator struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewLogHandlerDecorator wraps next. Nil extractors are dropped.
func NewLogHandlerDecorator(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	if len(clean) == 0 {
		return next
	}
	return &LogHandlerDecorator{next: next, extractors: clean}
}

func (h *LogHandlerDecorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *LogHandlerDecorator) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *LogHandlerDecorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandlerDecorator{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *LogHandlerDecorator) WithGroup(name string) slog.Handler {
	return &LogHandlerDecorator{next: h.next.WithGroup(name), extractors: h.extractors}
}

type ctxKey struct{ name string }

// WithValue stores a string under name so that FromContext can log it.
func WithValue(ctx context.Context, name, value string) context.Context {
	return context.WithValue(ctx, ctxKey{name}, value)
}

// FromContext returns an extractor that logs the value stored by WithValue.
func FromContext(name string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v, ok := ctx.Value(ctxKey{name}).(string)
		if !ok || v == "" {
			return slog.Attr{}, false
		}
		return slog.String(name, v), true
	}
}

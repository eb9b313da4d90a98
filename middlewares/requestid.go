package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/oncallkit/notifydesk/internal"
	"github.com/oncallkit/notifydesk/pkg/logger"
)

type requestIDKey struct{}

// DefaultRequestIDHeaders are checked in order for an upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string
	Headers        []string
}

type RequestIDOption func(*RequestIDConfig)

func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Generator = gen
	}
}

func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// RequestID tags every request with an ID taken from the first matching
// request header, or a fresh UUID. The ID is echoed in the response and
// picked up by loggers built with RequestIDExtractor.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			var reqID string
			for _, h := range cfg.Headers {
				if v := c.Header(h); v != "" {
					reqID = v
					break
				}
			}
			if reqID == "" {
				reqID = cfg.Generator()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(cfg.ResponseHeader, reqID)
			return next(c)
		}
	}
}

// GetRequestID returns the request ID, or "" when RequestID is not installed.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds request_id to every record logged with a request
// context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := GetRequestID(ctx); v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}

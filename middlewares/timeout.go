package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/oncallkit/notifydesk/internal"
)

const DefaultTimeout = 30 * time.Second

type timeoutContextKey struct{}

// Timeout bounds how long the handler may run. When the deadline passes
// first a *TimeoutError is returned; the handler keeps running until it
// notices the cancelled context from TimeoutContext.
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), d)
			defer cancel()
			c.Set(timeoutContextKey{}, ctx)

			done := make(chan error, 1)
			go func() { done <- next(c) }()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					c.LogWarn("request timeout", "timeout", d.String())
					return &TimeoutError{Duration: d}
				}
				return ctx.Err()
			}
		}
	}
}

// TimeoutContext returns the deadline-bound context installed by Timeout,
// or the request context.
func TimeoutContext(c internal.Context) context.Context {
	if ctx, ok := c.Get(timeoutContextKey{}).(context.Context); ok {
		return ctx
	}
	return c.Context()
}

package middlewares

import (
	"runtime"

	"github.com/oncallkit/notifydesk/internal"
)

const DefaultStackSize = 4096

type RecoverConfig struct {
	StackSize         int
	DisablePrintStack bool
}

type RecoverOption func(*RecoverConfig)

func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover turns a panic in the chain into a *PanicError so the app's
// ErrorHandler renders it like any other failure.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{StackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				pe := &PanicError{Value: r}
				if cfg.DisablePrintStack {
					c.LogError("panic recovered", "panic", r)
				} else {
					buf := make([]byte, cfg.StackSize)
					pe.Stack = buf[:runtime.Stack(buf, false)]
					c.LogError("panic recovered", "panic", r, "stack", string(pe.Stack))
				}
				err = pe
			}()

			return next(c)
		}
	}
}

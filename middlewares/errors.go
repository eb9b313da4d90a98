package middlewares

import (
	"errors"
	"fmt"
	"time"
)

// PanicError is returned by Recover in place of a panic.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError is returned by Timeout when the handler misses its deadline.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	ok := errors.As(err, &pe)
	return pe, ok
}

func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	ok := errors.As(err, &te)
	return te, ok
}

package mutation

import "log/slog"

type settings struct {
	refetcher   Refetcher
	log         *slog.Logger
	onCompleted func(any)
	onError     func(error)
	queries     []string
	await       bool
}

// Option configures an Executor.
type Option func(*settings)

// WithRefetchQueries names the query groups to reload through r after a
// successful mutation.
func WithRefetchQueries(r Refetcher, names ...string) Option {
	return func(s *settings) {
		s.refetcher = r
		s.queries = append(s.queries, names...)
	}
}

// WithAwaitRefetchQueries controls whether Execute waits for the refetch.
// Default true.
func WithAwaitRefetchQueries(await bool) Option {
	return func(s *settings) { s.await = await }
}

// WithOnCompleted registers a callback run with the mutation result after
// a successful Execute. It is skipped if Out does not match the executor's
// result type.
func WithOnCompleted[Out any](fn func(Out)) Option {
	return func(s *settings) {
		s.onCompleted = func(v any) {
			if out, ok := v.(Out); ok {
				fn(out)
			}
		}
	}
}

// WithOnError registers a callback run when the mutation fails.
func WithOnError(fn func(error)) Option {
	return func(s *settings) { s.onError = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

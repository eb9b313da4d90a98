package mutation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

var (
	// ErrInFlight is returned by Execute while a previous call is still pending.
	ErrInFlight = errors.New("mutation: already in flight")
	// ErrAborted is recorded when the mutation or an awaited refetch panics.
	ErrAborted = errors.New("mutation: aborted")
)

// State of an Executor.
type State int

const (
	Idle State = iota
	Loading
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Status is a snapshot of an Executor.
type Status[Out any] struct {
	Data  Out
	Err   error
	State State
}

func (s Status[Out]) Loading() bool { return s.State == Loading }

// Func performs the mutation.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Refetcher reloads named query groups.
type Refetcher interface {
	Refetch(ctx context.Context, names ...string) error
}

// Executor runs one mutation at a time and, once it succeeds, refetches the
// query groups that depend on it.
type Executor[In, Out any] struct {
	mutate Func[In, Out]
	cfg    settings
	status Status[Out]
	mu     sync.Mutex
}

// New creates an idle Executor.
func New[In, Out any](mutate Func[In, Out], opts ...Option) *Executor[In, Out] {
	cfg := settings{
		await: true,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Executor[In, Out]{mutate: mutate, cfg: cfg}
}

// Execute runs the mutation. While it is pending, further calls return
// ErrInFlight without invoking the mutation.
//
// On success the configured query groups are refetched. When refetches are
// awaited the executor stays Loading until they finish, and OnCompleted runs
// afterwards. A refetch failure is logged and does not fail the mutation.
// If the mutation panics the executor settles as Failed with ErrAborted and
// the panic propagates.
func (e *Executor[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	var zero Out

	e.mu.Lock()
	if e.status.State == Loading {
		e.mu.Unlock()
		return zero, ErrInFlight
	}
	e.status = Status[Out]{State: Loading}
	e.mu.Unlock()

	settled := false
	defer func() {
		if !settled {
			e.finish(Status[Out]{State: Failed, Err: ErrAborted})
		}
	}()

	out, err := e.mutate(ctx, in)
	if err != nil {
		settled = true
		e.finish(Status[Out]{State: Failed, Err: err})
		if e.cfg.onError != nil {
			e.cfg.onError(err)
		}
		return zero, err
	}

	e.refetch(ctx)

	settled = true
	e.finish(Status[Out]{State: Succeeded, Data: out})
	if e.cfg.onCompleted != nil {
		e.cfg.onCompleted(out)
	}
	return out, nil
}

func (e *Executor[In, Out]) refetch(ctx context.Context) {
	if e.cfg.refetcher == nil || len(e.cfg.queries) == 0 {
		return
	}

	run := func(ctx context.Context) {
		if err := e.cfg.refetcher.Refetch(ctx, e.cfg.queries...); err != nil {
			e.cfg.log.WarnContext(ctx, "refetch after mutation failed",
				slog.Any("queries", e.cfg.queries),
				slog.String("error", err.Error()),
			)
		}
	}

	if e.cfg.await {
		run(ctx)
		return
	}
	go run(context.WithoutCancel(ctx))
}

func (e *Executor[In, Out]) finish(s Status[Out]) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Status returns the current snapshot.
func (e *Executor[In, Out]) Status() Status[Out] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Reset returns a settled executor to Idle. It has no effect while loading.
func (e *Executor[In, Out]) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status.State != Loading {
		e.status = Status[Out]{}
	}
}

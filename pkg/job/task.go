package job

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
)

// Task is a named handler for payloads of type P.
type Task[P any] interface {
	Name() string
	Handle(ctx context.Context, payload P) error
}

// ScheduledTask runs on a five-field cron schedule without payload.
type ScheduledTask interface {
	Name() string
	Schedule() string
	Handle(ctx context.Context) error
}

type executor interface {
	execute(ctx context.Context, payload json.RawMessage) error
}

type typedExecutor[P any] struct {
	task Task[P]
}

func (e typedExecutor[P]) execute(ctx context.Context, raw json.RawMessage) error {
	var p P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return errors.Join(ErrInvalidPayload, err)
		}
	}
	return e.task.Handle(ctx, p)
}

type scheduledExecutor func(ctx context.Context) error

func (f scheduledExecutor) execute(ctx context.Context, _ json.RawMessage) error {
	return f(ctx)
}

type registry struct {
	tasks map[string]executor
	mu    sync.RWMutex
}

func newRegistry() *registry {
	return &registry{tasks: make(map[string]executor)}
}

func (r *registry) add(name string, e executor) {
	r.mu.Lock()
	r.tasks[name] = e
	r.mu.Unlock()
}

func (r *registry) lookup(name string) (executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tasks[name]
	return e, ok
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

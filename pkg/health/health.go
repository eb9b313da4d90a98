package health

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc matches the Healthcheck closures exposed by db, redis and job.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its probe.
type Checks map[string]CheckFunc

// Report is the aggregated probe result.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status string            `json:"status"`
}

type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Failed returns the sorted names of failing checks.
func (r *Report) Failed() []string {
	var out []string
	for name, res := range r.Checks {
		if res.Status != StatusHealthy {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Run executes all checks concurrently under a shared timeout.
func Run(ctx context.Context, checks Checks, timeout time.Duration, log *slog.Logger) *Report {
	rep := &Report{Status: StatusHealthy, Checks: make(map[string]Result, len(checks))}
	if len(checks) == 0 {
		return rep
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var mu sync.Mutex
	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			res := Result{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				res = Result{Status: StatusUnhealthy, Error: err.Error()}
				if log != nil {
					log.WarnContext(ctx, "health check failed", slog.String("check", name), slog.String("error", err.Error()))
				}
			}
			mu.Lock()
			rep.Checks[name] = res
			if res.Status != StatusHealthy {
				rep.Status = StatusUnhealthy
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return rep
}

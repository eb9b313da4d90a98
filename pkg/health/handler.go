package health

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Option configures the readiness handler.
type Option func(*options)

type options struct {
	log     *slog.Logger
	timeout time.Duration
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// LivenessHandler always answers 200.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, &Report{Status: StatusHealthy})
	}
}

// ReadinessHandler answers 503 when any check fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	o := &options{timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(o)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		rep := Run(r.Context(), checks, o.timeout, o.log)
		status := http.StatusOK
		if rep.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		write(w, r, status, rep)
	}
}

func write(w http.ResponseWriter, r *http.Request, status int, rep *Report) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(rep)
		return
	}

	w.WriteHeader(status)
	if status == http.StatusOK {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable"))
}

package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oncallkit/notifydesk/pkg/health"
	"github.com/oncallkit/notifydesk/pkg/job"
	"github.com/oncallkit/notifydesk/pkg/logger"
)

const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// App owns routing, middleware and the server lifecycle.
// It is immutable after New.
type App struct {
	router          chi.Router
	errorHandler    ErrorHandler
	notFoundHandler HandlerFunc
	healthConfig    *healthConfig
	logger          *slog.Logger
	jobs            *job.Manager
	middlewares     []Middleware
	handlers        []Handler
	staticRoutes    []staticRoute
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates an application with the given options.
//
// Example:
//
//	app := notifydesk.New(
//	    notifydesk.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    notifydesk.WithHandlers(handlers.NewContactMethods(svc, queries)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRoutes()
	return a
}

// Router returns the underlying chi router. It implements http.Handler.
func (a *App) Router() chi.Router {
	return a.router
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run serves on addr until SIGINT or SIGTERM. Job workers configured with
// WithJobs start before the listener and stop after it.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if a.jobs != nil {
		cfg.startupHooks = append([]func(context.Context) error{a.jobs.StartFunc()}, cfg.startupHooks...)
		cfg.shutdownHooks = append([]func(context.Context) error{a.jobs.Shutdown()}, cfg.shutdownHooks...)
	}

	if addr == "" {
		addr = cfg.address
	}
	return serve(a.router, addr, cfg)
}

func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(
			a.healthConfig.checks,
			health.WithLogger(a.logger),
		))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

func (a *App) handleError(c Context, err error) {
	if c.Written() {
		a.logger.ErrorContext(c, "handler error after response was written", slog.String("error", err.Error()))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			a.logger.ErrorContext(c, "error handler failed", slog.String("error", herr.Error()))
		}
		return
	}
	http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check. Checks run in parallel.
//
//	notifydesk.WithReadinessCheck("postgres", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
		}
	}
}

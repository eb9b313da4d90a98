package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oncallkit/notifydesk/pkg/health"
	"github.com/oncallkit/notifydesk/pkg/job"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware, applied in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithStaticFiles serves subDir of fsys under pattern. Directory listings
// are disabled.
//
//	//go:embed static
//	var assets embed.FS
//
//	notifydesk.WithStaticFiles("/static/", assets, "static")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		sub, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}
		files := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(sub))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			files.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler: handler, pattern: pattern})
	}
}

// WithErrorHandler sets the handler for errors returned by handlers.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithHealthChecks enables /health/live and /health/ready.
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithJobs ties the job manager to the server lifecycle: workers start
// before the listener and stop during shutdown.
func WithJobs(m *job.Manager) Option {
	return func(a *App) {
		a.jobs = m
	}
}

package notifydesk

import (
	"context"
	"io/fs"
	"log/slog"
	"time"

	"github.com/oncallkit/notifydesk/internal"
	"github.com/oncallkit/notifydesk/pkg/health"
	"github.com/oncallkit/notifydesk/pkg/job"
)

type (
	// App owns routing, middleware and the server lifecycle.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	HandlerFunc  = internal.HandlerFunc
	Middleware   = internal.Middleware
	ErrorHandler = internal.ErrorHandler

	Option       = internal.Option
	RunOption    = internal.RunOption
	HealthOption = internal.HealthOption

	// Component is the interface for renderable templates.
	// This is compatible with templ.Component.
	Component = internal.Component

	ValidationErrors = internal.ValidationErrors
	ResponseWriter   = internal.ResponseWriter

	HTTPError       = internal.HTTPError
	HTTPErrorOption = internal.HTTPErrorOption

	Extractor       = internal.Extractor
	ExtractorSource = internal.ExtractorSource
)

// New creates an application.
//
//	app := notifydesk.New(
//	    notifydesk.WithLogger(log),
//	    notifydesk.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    notifydesk.WithHandlers(handlers.NewContactMethods(deps)),
//	)
//
//	err := app.Run(cfg.Address, notifydesk.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// WithMiddleware adds global middleware, applied in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles serves subDir of fsys under pattern.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithHealthChecks enables /health/live and /health/ready.
//
//	notifydesk.WithHealthChecks(
//	    notifydesk.WithReadinessCheck("postgres", db.Healthcheck(pool)),
//	    notifydesk.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithLogger sets the logger handed to every Context.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithJobs starts the job manager's workers with the server and stops
// them during shutdown.
func WithJobs(m *job.Manager) Option {
	return internal.WithJobs(m)
}

// Run options

func Address(addr string) RunOption {
	return internal.Address(addr)
}

func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

func WithTitle(title string) HTTPErrorOption {
	return internal.WithTitle(title)
}

func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// AsHTTPError returns the first HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Extractors

func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }
func FromQuery(name string) ExtractorSource  { return internal.FromQuery(name) }
func FromParam(name string) ExtractorSource  { return internal.FromParam(name) }
func FromForm(name string) ExtractorSource   { return internal.FromForm(name) }

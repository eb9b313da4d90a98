package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oncallkit/notifydesk/pkg/binder"
	"github.com/oncallkit/notifydesk/pkg/htmx"
	"github.com/oncallkit/notifydesk/pkg/sanitizer"
	"github.com/oncallkit/notifydesk/pkg/validator"
)

// ValidationErrors is a collection of validation errors.
type ValidationErrors = validator.ValidationErrors

// Component is the interface for renderable templates.
// This is compatible with templ.Component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the request context.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	Context() context.Context

	// Param returns the URL parameter value by name.
	Param(name string) string
	Query(name string) string
	// Form returns the form value by name, parsing the body on first access.
	Form(name string) string
	Header(name string) string
	SetHeader(name, value string)

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error
	// Redirect handles both regular and HTMX requests.
	Redirect(code int, url string) error

	// Error creates an HTTPError without writing a response. Return it from
	// the handler to reach the ErrorHandler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	IsHTMX() bool

	// Render writes component with the given status code. HTMX requests
	// always get 200. Render options set HTMX response headers and append
	// out-of-band components; both apply to HTMX requests only.
	Render(code int, component Component, opts ...htmx.RenderOption) error

	// RenderPartial renders partial for HTMX requests and fullPage otherwise.
	RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error

	// Bind binds form data, sanitizes, and validates into a struct.
	// Validation errors are returned separately from system errors.
	Bind(v any) (ValidationErrors, error)
	BindJSON(v any) (ValidationErrors, error)

	Written() bool
	ResponseWriter() *ResponseWriter

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)
	Get(key any) any
}

type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w, htmx.IsHTMX(r))
	}
	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		logger:         app.logger,
	}
}

func (c *requestContext) Request() *http.Request        { return c.request }
func (c *requestContext) Response() http.ResponseWriter { return c.response }
func (c *requestContext) Context() context.Context      { return c.request.Context() }

func (c *requestContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *requestContext) Err() error                  { return c.request.Context().Err() }
func (c *requestContext) Value(key any) any           { return c.request.Context().Value(key) }

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	htmx.RedirectWithStatus(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) IsHTMX() bool {
	return htmx.IsHTMX(c.request)
}

func (c *requestContext) Render(code int, component Component, opts ...htmx.RenderOption) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")

	var cfg *htmx.Config
	if len(opts) > 0 && c.IsHTMX() {
		cfg = htmx.NewConfig(opts...)
		cfg.ApplyHeaders(c.response)
	}

	c.response.WriteHeader(code)

	ctx := c.request.Context()
	if err := component.Render(ctx, c.response); err != nil {
		return err
	}
	if cfg != nil {
		for _, oob := range cfg.OOBComponents {
			if err := oob.Render(ctx, c.response); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *requestContext) RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error {
	if c.IsHTMX() {
		return c.Render(code, partial, opts...)
	}
	return c.Render(code, fullPage)
}

func (c *requestContext) Bind(v any) (ValidationErrors, error) {
	return c.bindAndValidate(binder.Form(), v, "bind form")
}

func (c *requestContext) BindJSON(v any) (ValidationErrors, error) {
	return c.bindAndValidate(binder.JSON(), v, "bind json")
}

func (c *requestContext) bindAndValidate(bind binder.Func, v any, label string) (ValidationErrors, error) {
	if err := bind(c.request, v); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if err := sanitizer.SanitizeStruct(v); err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}
	if err := validator.ValidateStruct(v); err != nil {
		if validator.IsValidationError(err) {
			return validator.ExtractValidationErrors(err), nil
		}
		return nil, fmt.Errorf("validate: %w", err)
	}
	return nil, nil
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

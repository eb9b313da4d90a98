package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oncallkit/notifydesk/internal"
)

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

// serve mounts h at "/" for every method behind mw and runs req through a
// real app. Handler errors are captured instead of rendered.
func serve(t *testing.T, req *http.Request, h internal.HandlerFunc, mw ...internal.Middleware) (*httptest.ResponseRecorder, error) {
	t.Helper()

	var handlerErr error
	app := internal.New(
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			handlerErr = err
			return c.String(http.StatusInternalServerError, err.Error())
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.Group(func(r internal.Router) {
				r.Use(mw...)
				r.GET("/", h)
				r.POST("/", h)
			})
		})),
	)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w, handlerErr
}

func ok(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}

// newPreflightApp installs mw on an /api group so OPTIONS requests reach
// it before route matching.
func newPreflightApp(mw internal.Middleware) *internal.App {
	return internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.Route("/api", func(r internal.Router) {
			r.Use(mw)
			r.POST("/graphql", ok)
		})
	})))
}

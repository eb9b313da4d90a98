package notifydesk_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk"
	"github.com/oncallkit/notifydesk/middlewares"
)

type routes func(r notifydesk.Router)

func (f routes) Routes(r notifydesk.Router) { f(r) }

func TestNew_ServesHandlers(t *testing.T) {
	t.Parallel()

	app := notifydesk.New(
		notifydesk.WithMiddleware(middlewares.RequestID()),
		notifydesk.WithHandlers(routes(func(r notifydesk.Router) {
			r.GET("/users/{userID}", func(c notifydesk.Context) error {
				return c.String(http.StatusOK, c.Param("userID"))
			})
		})),
	)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/u1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHTTPErrors(t *testing.T) {
	t.Parallel()

	app := notifydesk.New(
		notifydesk.WithErrorHandler(func(c notifydesk.Context, err error) error {
			if he := notifydesk.AsHTTPError(err); he != nil {
				return c.JSON(he.StatusCode(), map[string]string{"error": he.Message, "title": he.Title})
			}
			return c.String(http.StatusInternalServerError, "internal")
		}),
		notifydesk.WithHandlers(routes(func(r notifydesk.Router) {
			r.GET("/missing", func(notifydesk.Context) error {
				return notifydesk.ErrNotFound("contact method not found", notifydesk.WithTitle("Not found"))
			})
			r.GET("/wrapped", func(notifydesk.Context) error {
				return errors.Join(errors.New("ctx"), notifydesk.ErrUnprocessable("bad input"))
			})
		})),
	)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"contact method not found","title":"Not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wrapped", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})

	app := notifydesk.New()
	errc := make(chan error, 1)
	go func() {
		errc <- app.Run("127.0.0.1:0",
			notifydesk.WithContext(ctx),
			notifydesk.StartupHook(func(context.Context) error {
				close(started)
				return nil
			}),
		)
	}()

	<-started
	cancel()
	require.NoError(t, <-errc)
}

func TestRun_StartupHookError(t *testing.T) {
	t.Parallel()

	app := notifydesk.New()
	err := app.Run("127.0.0.1:0", notifydesk.StartupHook(func(context.Context) error {
		return errors.New("db down")
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestRun_ReleasesWhenListenFails(t *testing.T) {
	t.Parallel()

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = taken.Close() })

	var started, released bool
	app := notifydesk.New()
	err = app.Run(taken.Addr().String(),
		notifydesk.StartupHook(func(context.Context) error {
			started = true
			return nil
		}),
		notifydesk.ShutdownHook(func(context.Context) error {
			released = true
			return nil
		}),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
	assert.True(t, started)
	assert.True(t, released, "shutdown hooks run after a failed start")
}

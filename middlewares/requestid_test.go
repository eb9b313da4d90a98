package middlewares_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/internal"
	"github.com/oncallkit/notifydesk/middlewares"
	"github.com/oncallkit/notifydesk/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates a uuid", func(t *testing.T) {
		t.Parallel()

		var seen string
		w, err := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			seen = middlewares.GetRequestID(c)
			return ok(c)
		}, middlewares.RequestID())
		require.NoError(t, err)

		got := w.Header().Get("X-Request-ID")
		_, perr := uuid.Parse(got)
		require.NoError(t, perr)
		assert.Equal(t, got, seen)
	})

	t.Run("keeps upstream id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-1")
		w, err := serve(t, req, ok, middlewares.RequestID())
		require.NoError(t, err)
		assert.Equal(t, "corr-1", w.Header().Get("X-Request-ID"))
	})

	t.Run("custom generator and header", func(t *testing.T) {
		t.Parallel()

		w, err := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), ok, middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDResponseHeader("X-Trace"),
		))
		require.NoError(t, err)
		assert.Equal(t, "fixed", w.Header().Get("X-Trace"))
	})
}

func TestGetRequestID_Missing(t *testing.T) {
	t.Parallel()
	assert.Empty(t, middlewares.GetRequestID(context.Background()))
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(logger.NewLogHandlerDecorator(
		slog.NewJSONHandler(&buf, nil),
		middlewares.RequestIDExtractor(),
	))

	app := internal.New(
		internal.WithLogger(log),
		internal.WithMiddleware(middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "req-42" }),
		)),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				c.LogInfo("handled")
				return ok(c)
			})
		})),
	)
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

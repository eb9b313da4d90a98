package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/middlewares"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	request := func(method, origin string) *http.Request {
		req := httptest.NewRequest(method, "/", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		return req
	}

	t.Run("wildcard", func(t *testing.T) {
		t.Parallel()

		w, err := serve(t, request(http.MethodPost, "https://ops.example.com"), ok, middlewares.CORS())
		require.NoError(t, err)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("same origin request untouched", func(t *testing.T) {
		t.Parallel()

		w, err := serve(t, request(http.MethodGet, ""), ok, middlewares.CORS())
		require.NoError(t, err)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origins echo", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(middlewares.WithAllowOrigins("https://a.example.com"))

		w, _ := serve(t, request(http.MethodGet, "https://a.example.com"), ok, mw)
		assert.Equal(t, "https://a.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		w, _ = serve(t, request(http.MethodGet, "https://b.example.com"), ok, mw)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("origin func overrides list", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithAllowOrigins("https://a.example.com"),
			middlewares.WithAllowOriginFunc(func(o string) bool { return o == "https://b.example.com" }),
		)
		w, _ := serve(t, request(http.MethodGet, "https://a.example.com"), ok, mw)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

		w, _ = serve(t, request(http.MethodGet, "https://b.example.com"), ok, mw)
		assert.Equal(t, "https://b.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("credentials", func(t *testing.T) {
		t.Parallel()

		w, _ := serve(t, request(http.MethodGet, "https://a.example.com"), ok,
			middlewares.CORS(middlewares.WithAllowCredentials(), middlewares.WithExposeHeaders("X-Request-ID")))
		assert.Equal(t, "https://a.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
	})
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	app := newPreflightApp(middlewares.CORS(
		middlewares.WithAllowHeaders("Content-Type"),
		middlewares.WithMaxAge(time.Hour),
	))

	req := httptest.NewRequest(http.MethodOptions, "/api/graphql", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Values("Vary"), "Access-Control-Request-Method")
}

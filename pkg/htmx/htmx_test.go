package htmx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oncallkit/notifydesk/pkg/htmx"
)

func TestIsHTMX(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, htmx.IsHTMX(req))

	req.Header.Set(htmx.HeaderHXRequest, "true")
	req.Header.Set(htmx.HeaderHXTriggerName, "value")
	assert.True(t, htmx.IsHTMX(req))
	assert.Equal(t, "value", htmx.TriggerName(req))
}

func TestConfig_ApplyHeaders(t *testing.T) {
	t.Parallel()

	t.Run("plain triggers are comma joined", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		htmx.NewConfig(htmx.WithTrigger("a", "b"), htmx.WithReswap(htmx.SwapNone)).ApplyHeaders(rec)

		assert.Equal(t, "a, b", rec.Header().Get(htmx.HeaderHXTrigger))
		assert.Equal(t, "none", rec.Header().Get(htmx.HeaderHXReswap))
	})

	t.Run("detail switches to json form", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		htmx.NewConfig(
			htmx.WithTrigger("closed"),
			htmx.WithTriggerDetail("contactMethodCreated", map[string]string{"contactMethodID": "cm1"}),
		).ApplyHeaders(rec)

		assert.JSONEq(t,
			`{"closed":null,"contactMethodCreated":{"contactMethodID":"cm1"}}`,
			rec.Header().Get(htmx.HeaderHXTrigger),
		)
	})

	t.Run("nil config is a no-op", func(t *testing.T) {
		t.Parallel()

		var cfg *htmx.Config
		rec := httptest.NewRecorder()
		cfg.ApplyHeaders(rec)
		assert.Empty(t, rec.Header())
	})
}

func TestRedirectWithStatus(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(htmx.HeaderHXRequest, "true")
	rec := httptest.NewRecorder()

	htmx.RedirectWithStatus(rec, req, "/users/u1", http.StatusSeeOther)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/users/u1", rec.Header().Get(htmx.HeaderHXRedirect))
}

func TestOOB(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "true", htmx.OOB(""))
	assert.Equal(t, "innerHTML", htmx.OOB(htmx.SwapInnerHTML))
}

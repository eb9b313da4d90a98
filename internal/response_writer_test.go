package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w, false)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)
	n, err := rw.Write([]byte("missing"))

	assert.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, rw.Status())
	assert.Equal(t, int64(7), rw.Size())
	assert.True(t, rw.Written())
}

func TestResponseWriter_HTMX(t *testing.T) {
	t.Parallel()

	for _, code := range []int{http.StatusOK, http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusInternalServerError} {
		w := httptest.NewRecorder()
		rw := NewResponseWriter(w, true)
		rw.WriteHeader(code)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, code, rw.Status())
	}
}

func TestResponseWriter_ImplicitStatus(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w, false)
	_, _ = rw.Write([]byte("ok"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

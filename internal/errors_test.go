package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/internal"
)

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("wrapped", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("db down")
		httpErr := internal.ErrServiceUnavailable("try again later", internal.WithError(cause))
		got := internal.AsHTTPError(fmt.Errorf("outer: %w", httpErr))

		require.NotNil(t, got)
		assert.Equal(t, http.StatusServiceUnavailable, got.StatusCode())
		assert.Equal(t, "Service Unavailable", got.StatusText())
		assert.Equal(t, "try again later", got.Error())
		assert.ErrorIs(t, got, cause)
	})

	t.Run("unrelated", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, internal.AsHTTPError(errors.New("plain")))
		assert.Nil(t, internal.AsHTTPError(nil))
	})
}

func TestHTTPErrorConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *internal.HTTPError
		code int
	}{
		{internal.ErrBadRequest("x"), http.StatusBadRequest},
		{internal.ErrNotFound("x"), http.StatusNotFound},
		{internal.ErrUnprocessable("x"), http.StatusUnprocessableEntity},
		{internal.ErrInternal("x"), http.StatusInternalServerError},
		{internal.ErrServiceUnavailable("x"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
	}

	e := internal.ErrNotFound("missing", internal.WithTitle("Gone"), internal.WithRequestID("req-1"))
	assert.Equal(t, "Gone", e.Title)
	assert.Equal(t, "req-1", e.RequestID)
}

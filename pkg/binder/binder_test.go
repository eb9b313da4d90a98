package binder_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/binder"
)

type draft struct {
	Name  string `form:"name"  json:"name"`
	Type  string `form:"type"  json:"type"`
	Value string `form:"value" json:"value"`
}

func TestForm(t *testing.T) {
	t.Parallel()

	form := url.Values{"name": {"Phone"}, "type": {"SMS"}, "value": {"+15551234567"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var d draft
	require.NoError(t, binder.Form()(req, &d))
	assert.Equal(t, draft{Name: "Phone", Type: "SMS", Value: "+15551234567"}, d)
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Mail","type":"EMAIL","value":"a@b.co"}`))
		req.Header.Set("Content-Type", "application/json")

		var d draft
		require.NoError(t, binder.JSON()(req, &d))
		assert.Equal(t, "EMAIL", d.Type)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var d draft
		require.ErrorIs(t, binder.JSON()(req, &d), binder.ErrBind)
	})
}

package gql_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/gql"
	"github.com/oncallkit/notifydesk/pkg/validator"
)

func TestNewErrors(t *testing.T) {
	t.Parallel()

	path := []any{"createUserContactMethod"}

	t.Run("validation errors become field errors", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("create: %w", validator.NewFieldError("value", "must be a valid phone number"))
		es := gql.NewErrors(path, err, "")
		require.Len(t, es, 1)
		assert.Equal(t, "value", es[0].FieldName())
		assert.Equal(t, "must be a valid phone number", es[0].Message)

		ves := es.Validation()
		assert.Equal(t, "must be a valid phone number", ves.First("value"))
	})

	t.Run("other errors use fallback", func(t *testing.T) {
		t.Parallel()

		es := gql.NewErrors(path, errors.New("pq: connection reset"), "internal error")
		require.Len(t, es, 1)
		assert.Empty(t, es[0].FieldName())
		assert.Equal(t, "internal error", es[0].Message)
		assert.Empty(t, es.Validation())
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, gql.NewErrors(path, nil, ""))
	})
}

func TestErrors_JSON(t *testing.T) {
	t.Parallel()

	raw := `{"errors":[{"message":"already in use","path":["createUserContactMethod"],"extensions":{"isFieldError":true,"fieldName":"name"}}]}`
	var resp gql.Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "name", resp.Errors[0].FieldName())
	assert.Equal(t, "graphql: name: already in use", resp.Errors.Error())
}

func TestClient_Do(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gql.Request
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		switch req.OperationName {
		case "ok":
			assert.Equal(t, "token", r.Header.Get("X-Api-Key"))
			assert.Equal(t, "u1", req.Variables["id"])
			_, _ = w.Write([]byte(`{"data":{"thing":{"id":"t1"}}}`))
		case "invalid":
			_, _ = w.Write([]byte(`{"errors":[{"message":"bad","extensions":{"isFieldError":true,"fieldName":"value"}}]}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}
	}))
	t.Cleanup(srv.Close)

	client := gql.NewClient(srv.URL, gql.WithHeader("X-Api-Key", "token"))
	ctx := context.Background()

	var out struct {
		Thing struct {
			ID string `json:"id"`
		} `json:"thing"`
	}
	require.NoError(t, client.Do(ctx, gql.Request{OperationName: "ok", Variables: map[string]any{"id": "u1"}}, &out))
	assert.Equal(t, "t1", out.Thing.ID)

	err := client.Do(ctx, gql.Request{OperationName: "invalid"}, &out)
	var es gql.Errors
	require.ErrorAs(t, err, &es)
	assert.Equal(t, "value", es[0].FieldName())

	err = client.Do(ctx, gql.Request{OperationName: "down"}, &out)
	require.ErrorIs(t, err, gql.ErrRequest)
}

package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk"
	"github.com/oncallkit/notifydesk/handlers"
	"github.com/oncallkit/notifydesk/pkg/cache"
	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/dialog"
	"github.com/oncallkit/notifydesk/pkg/htmx"
	"github.com/oncallkit/notifydesk/pkg/query"
)

type env struct {
	app  *notifydesk.App
	svc  *contactmethod.Service
	repo *contactmethod.MemoryRepository
}

type setup struct {
	mutator dialog.Mutator
	svcOpts []contactmethod.ServiceOption
}

func newEnv(t *testing.T, s setup) *env {
	t.Helper()

	repo := contactmethod.NewMemoryRepository(
		contactmethod.User{ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com"},
		contactmethod.User{ID: "u2", Name: "Grace Hopper"},
	)
	n := 0
	opts := append([]contactmethod.ServiceOption{
		contactmethod.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		contactmethod.WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
	}, s.svcOpts...)
	svc := contactmethod.NewService(repo, opts...)

	store := cache.NewMemory[[]byte]()
	t.Cleanup(func() { _ = store.Close() })

	app := notifydesk.New(
		notifydesk.WithErrorHandler(handlers.ErrorHandler("test")),
		notifydesk.WithNotFoundHandler(handlers.NotFound("test")),
		notifydesk.WithHandlers(
			handlers.NewContactMethods(handlers.Config{
				Service: svc,
				Mutator: s.mutator,
				Queries: query.New(store),
				Version: "test",
			}),
			handlers.NewGraphQL(svc, time.Second),
		),
	)
	return &env{app: app, svc: svc, repo: repo}
}

func (e *env) do(t *testing.T, method, target string, form url.Values, hx bool) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if hx {
		req.Header.Set(htmx.HeaderHXRequest, "true")
	}

	w := httptest.NewRecorder()
	e.app.ServeHTTP(w, req)
	return w
}

var dialogIDPattern = regexp.MustCompile(`name="dialog_id" value="([^"]+)"`)

func (e *env) openDialog(t *testing.T, userID string) string {
	t.Helper()

	w := e.do(t, http.MethodGet, "/users/"+userID+"/contact-methods/new", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	m := dialogIDPattern.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2, "dialog id not rendered")
	return m[1]
}

func draftForm(dialogID, name, typ, value string) url.Values {
	return url.Values{
		"dialog_id": {dialogID},
		"name":      {name},
		"type":      {typ},
		"value":     {value},
	}
}

type mutatorFunc func(ctx context.Context, in contactmethod.CreateInput) (string, error)

func (f mutatorFunc) CreateUserContactMethod(ctx context.Context, in contactmethod.CreateInput) (string, error) {
	return f(ctx, in)
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oncallkit/notifydesk"
	"github.com/oncallkit/notifydesk/middlewares"
	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/gql"
	"github.com/oncallkit/notifydesk/pkg/validator"
)

// GraphQL serves the CreateUserContactMethod mutation as GraphQL-shaped
// JSON under /api/graphql. It is the endpoint RemoteMutator talks to.
type GraphQL struct {
	svc     *contactmethod.Service
	timeout time.Duration
}

func NewGraphQL(svc *contactmethod.Service, timeout time.Duration) *GraphQL {
	return &GraphQL{svc: svc, timeout: timeout}
}

func (g *GraphQL) Routes(r notifydesk.Router) {
	r.Route("/api", func(r notifydesk.Router) {
		r.Use(middlewares.CORS())
		r.POST("/graphql", g.serve, middlewares.Timeout(g.timeout))
	})
}

var createPath = []any{"createUserContactMethod"}

func (g *GraphQL) serve(c notifydesk.Context) error {
	var req gql.Request
	if _, err := c.BindJSON(&req); err != nil {
		return c.JSON(http.StatusBadRequest, gql.Response{Errors: gql.Errors{{Message: "malformed request body"}}})
	}

	if req.OperationName != contactmethod.CreateOperation && !strings.Contains(req.Query, "createUserContactMethod") {
		return c.JSON(http.StatusBadRequest, gql.Response{Errors: gql.Errors{{Message: "unsupported operation"}}})
	}

	var in contactmethod.CreateInput
	if err := decodeVariable(req.Variables, "input", &in); err != nil {
		return c.JSON(http.StatusOK, gql.Response{Errors: gql.Errors{{Message: err.Error(), Path: createPath}}})
	}

	cm, err := g.svc.CreateUserContactMethod(middlewares.TimeoutContext(c), in)
	if err != nil {
		fallback := "internal server error"
		switch {
		case errors.Is(err, contactmethod.ErrUserNotFound):
			fallback = "user not found"
		case validator.IsValidationError(err):
		default:
			c.LogError("create contact method", slog.String("error", err.Error()))
		}
		return c.JSON(http.StatusOK, gql.Response{Errors: gql.NewErrors(createPath, err, fallback)})
	}

	data, err := json.Marshal(map[string]any{
		"createUserContactMethod": map[string]string{"id": cm.ID},
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, gql.Response{Data: data})
}

func decodeVariable(vars map[string]any, name string, out any) error {
	v, ok := vars[name]
	if !ok || v == nil {
		return errors.New("variable $" + name + " is required")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.New("variable $" + name + " is invalid")
	}
	return nil
}

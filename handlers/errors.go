package handlers

import (
	"net/http"
	"strings"

	"github.com/oncallkit/notifydesk"
	"github.com/oncallkit/notifydesk/middlewares"
	"github.com/oncallkit/notifydesk/pkg/gql"
	"github.com/oncallkit/notifydesk/views"
)

// ErrorHandler renders handler errors: GraphQL-shaped JSON under /api/,
// ErrorContent for HTMX requests and ErrorPage otherwise.
func ErrorHandler(version string) notifydesk.ErrorHandler {
	return func(c notifydesk.Context, err error) error {
		code, msg := classify(err)
		if code >= http.StatusInternalServerError {
			c.LogError("request failed", "error", err.Error(), "status", code)
		}

		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			return c.JSON(code, gql.Response{Errors: gql.Errors{{Message: msg}}})
		}
		return c.RenderPartial(code,
			views.ErrorPage(code, msg, version),
			views.ErrorContent(code, msg),
		)
	}
}

// NotFound renders the 404 page for unknown routes.
func NotFound(version string) notifydesk.HandlerFunc {
	return func(c notifydesk.Context) error {
		return c.RenderPartial(http.StatusNotFound,
			views.ErrorPage(http.StatusNotFound, "Page not found.", version),
			views.ErrorContent(http.StatusNotFound, "Page not found."),
		)
	}
}

func classify(err error) (int, string) {
	if he := notifydesk.AsHTTPError(err); he != nil {
		return he.StatusCode(), he.Message
	}
	if _, ok := middlewares.AsTimeoutError(err); ok {
		return http.StatusGatewayTimeout, "The request took too long."
	}
	return http.StatusInternalServerError, "Something went wrong."
}

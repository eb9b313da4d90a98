// Package internal is the HTTP core behind the notifydesk package, which
// re-exports its public API.
//
// # Core types
//
//   - App: routing, middleware, health endpoints and graceful shutdown
//   - Context: request/response access, rendering, binding and logging
//   - Router: the route declaration interface handed to each Handler
//   - Middleware and ErrorHandler: cross-cutting behaviour around handlers
//
// Context embeds context.Context, so handlers pass it straight to services:
//
//	func (h *ContactMethods) list(c notifydesk.Context) error {
//	    methods, err := h.svc.ListContactMethods(c, c.Param("userID"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.Render(http.StatusOK, views.ContactMethodList(methods))
//	}
//
// # HTMX
//
// Responses to HTMX requests are always sent with status 200 so htmx swaps
// the body, and Render options (triggers, retargeting, out-of-band
// components) only apply to them. RenderPartial picks between a full page
// and a fragment based on the HX-Request header.
//
// # Errors
//
// A handler returns an error instead of writing one. The App's ErrorHandler
// renders it; HTTPError carries the status code and the user-facing message
// while the wrapped error stays in the logs.
package internal

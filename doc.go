// Package notifydesk is the HTTP application layer of notifydesk, an on-call
// tool whose user profile page lets people register contact methods (SMS,
// voice, email, webhook, Slack) through a server-rendered HTMX dialog.
//
// The package re-exports a small framework: an [App] built with options, a
// [Router] that [Handler] values declare routes on, and a [Context] that
// handlers receive. Domain code lives under pkg/ (contactmethod, dialog,
// mutation, query, verification) and is wired together in cmd/notifydesk.
//
// # Quick start
//
//	app := notifydesk.New(
//	    notifydesk.WithLogger(log),
//	    notifydesk.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	    ),
//	    notifydesk.WithHandlers(handlers.NewContactMethods(deps)),
//	    notifydesk.WithHealthChecks(
//	        notifydesk.WithReadinessCheck("postgres", db.Healthcheck(pool)),
//	    ),
//	)
//
//	if err := app.Run(":8080", notifydesk.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// # Handlers
//
// A handler returns an error instead of writing an error response:
//
//	func (h *ContactMethods) list(c notifydesk.Context) error {
//	    methods, err := h.svc.ListContactMethods(c, c.Param("userID"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.Render(http.StatusOK, views.ContactMethodList(methods))
//	}
//
// The error reaches the [ErrorHandler] configured with [WithErrorHandler].
// [HTTPError] values carry a status code and a message safe to show users.
//
// # Lifecycle
//
// [App.Run] blocks until SIGINT or SIGTERM, then drains the HTTP server and
// runs shutdown hooks in order. Job workers attached with [WithJobs] start
// before the listener and stop first on shutdown.
package notifydesk

// Package middlewares provides HTTP middleware for the notifydesk app.
//
//	app := notifydesk.New(
//	    notifydesk.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	    ),
//	)
//
// Recover and Timeout report failures by returning *PanicError and
// *TimeoutError. The app's ErrorHandler decides how they are rendered:
//
//	if _, ok := middlewares.AsTimeoutError(err); ok {
//	    return c.JSON(http.StatusGatewayTimeout, ...)
//	}
//
// RequestIDExtractor plugs the request ID into the logger:
//
//	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())
package middlewares

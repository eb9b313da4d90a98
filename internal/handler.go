package internal

// Handler declares routes on a router.
//
// Example:
//
//	type ContactMethods struct {
//	    svc *contactmethod.Service
//	}
//
//	func (h *ContactMethods) Routes(r notifydesk.Router) {
//	    r.GET("/users/{userID}/contact-methods", h.list)
//	    r.POST("/users/{userID}/contact-methods", h.create)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands it to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error

package htmx

import "net/http"

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// Target returns the id of the element targeted by the HTMX request.
func Target(r *http.Request) string {
	return r.Header.Get(HeaderHXTarget)
}

// TriggerName returns the name of the element that triggered the request.
// For a form field change this is the input's name attribute.
func TriggerName(r *http.Request) string {
	return r.Header.Get(HeaderHXTriggerName)
}

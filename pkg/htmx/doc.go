// Package htmx provides helpers for server-rendered HTMX interactions.
//
// It covers request detection ([IsHTMX]), response headers for retargeting,
// swapping and raising client events ([WithTriggerDetail]), and out-of-band
// swaps that refresh other fragments of the page in the same response.
//
// Rendering is performed by the application Context, which applies a
// [Config] built from [RenderOption] values:
//
//	return c.Render(http.StatusOK, views.Empty(),
//	    htmx.WithTriggerDetail("contactMethodCreated", map[string]string{"contactMethodID": id}),
//	    htmx.WithOOB(views.ContactMethodList(userID, methods, true)),
//	)
package htmx

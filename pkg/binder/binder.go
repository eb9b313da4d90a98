// Package binder decodes request payloads into structs.
//
// Decoding is delegated to gin's binding package so `form` and `json` tags
// behave the same way they do in gin handlers. Validation is not performed
// here; callers run the sanitizer and validator afterwards.
package binder

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin/binding"
)

// ErrBind is returned when the request body cannot be decoded.
var ErrBind = errors.New("binder: failed to bind request")

// Func binds r into v.
type Func func(r *http.Request, v any) error

// Form binds url-encoded and multipart form values using `form` tags.
// Query parameters are included, as with http.Request.FormValue.
func Form() Func {
	return func(r *http.Request, v any) error {
		if err := binding.Form.Bind(r, v); err != nil {
			return errors.Join(ErrBind, err)
		}
		return nil
	}
}

// Query binds URL query parameters only.
func Query() Func {
	return func(r *http.Request, v any) error {
		if err := binding.Query.Bind(r, v); err != nil {
			return errors.Join(ErrBind, err)
		}
		return nil
	}
}

// JSON decodes a JSON request body using `json` tags.
func JSON() Func {
	return func(r *http.Request, v any) error {
		if r.Body == nil || r.Body == http.NoBody {
			return errors.Join(ErrBind, errors.New("empty body"))
		}
		if err := binding.JSON.Bind(r, v); err != nil {
			return errors.Join(ErrBind, err)
		}
		return nil
	}
}

package gql

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/oncallkit/notifydesk/pkg/validator"
)

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Variables     map[string]any `json:"variables,omitempty"`
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
}

// Response is a GraphQL-over-HTTP response body.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors Errors          `json:"errors,omitempty"`
}

// Extensions carries the field attribution of an error.
type Extensions struct {
	Code         string `json:"code,omitempty"`
	FieldName    string `json:"fieldName,omitempty"`
	IsFieldError bool   `json:"isFieldError,omitempty"`
}

// Error is a single GraphQL error.
type Error struct {
	Extensions *Extensions `json:"extensions,omitempty"`
	Message    string      `json:"message"`
	Path       []any       `json:"path,omitempty"`
}

func (e Error) Error() string {
	if f := e.FieldName(); f != "" {
		return f + ": " + e.Message
	}
	return e.Message
}

// FieldName returns the input field the error is attributed to, or "".
func (e Error) FieldName() string {
	if e.Extensions == nil || !e.Extensions.IsFieldError {
		return ""
	}
	return e.Extensions.FieldName
}

// Errors is the errors array of a response. It is returned as an error by
// Client.Do when non-empty.
type Errors []Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Validation converts field-attributed errors into validation errors.
func (es Errors) Validation() validator.ValidationErrors {
	var out validator.ValidationErrors
	for _, e := range es {
		if f := e.FieldName(); f != "" {
			out = append(out, validator.NewFieldError(f, e.Message)...)
		}
	}
	return out
}

// FieldError builds an error attributed to an input field.
func FieldError(path []any, field, message string) Error {
	return Error{
		Message:    message,
		Path:       path,
		Extensions: &Extensions{Code: "INVALID_INPUT", IsFieldError: true, FieldName: field},
	}
}

// NewErrors converts err into response errors. Validation errors become one
// field-attributed error per failed field; anything else becomes a single
// unattributed error with the given message.
func NewErrors(path []any, err error, fallback string) Errors {
	if err == nil {
		return nil
	}

	if ves := validator.ExtractValidationErrors(err); ves != nil {
		out := make(Errors, 0, len(ves))
		for _, ve := range ves {
			out = append(out, FieldError(path, ve.Field, ve.Message))
		}
		return out
	}

	var es Errors
	if errors.As(err, &es) {
		return es
	}

	msg := fallback
	if msg == "" {
		msg = err.Error()
	}
	return Errors{{Message: msg, Path: path}}
}

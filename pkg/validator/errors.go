package validator

import (
	"errors"
	"strings"
)

// ErrInvalidTag is returned by ValidateStruct for a malformed `validate` tag.
var ErrInvalidTag = errors.New("validator: invalid validate tag")

// ValidationError describes a single failed rule for one field.
type ValidationError struct {
	TranslationValues map[string]any
	Field             string
	Message           string
	TranslationKey    string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// TranslateFunc resolves a translation key with placeholder values.
type TranslateFunc func(key string, values map[string]any) string

// ValidationErrors is a collection of field-scoped validation errors.
// It implements error so it can flow through ordinary error returns.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Error())
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty reports whether the collection holds no errors.
func (e ValidationErrors) IsEmpty() bool {
	return len(e) == 0
}

// Has reports whether at least one error is attributed to field.
func (e ValidationErrors) Has(field string) bool {
	for _, ve := range e {
		if ve.Field == field {
			return true
		}
	}
	return false
}

// Get returns all messages attributed to field, in insertion order.
func (e ValidationErrors) Get(field string) []string {
	var msgs []string
	for _, ve := range e {
		if ve.Field == field {
			msgs = append(msgs, ve.Message)
		}
	}
	return msgs
}

// First returns the first message attributed to field, or an empty string.
func (e ValidationErrors) First(field string) string {
	for _, ve := range e {
		if ve.Field == field {
			return ve.Message
		}
	}
	return ""
}

// Fields returns the distinct field names in insertion order.
func (e ValidationErrors) Fields() []string {
	seen := make(map[string]struct{}, len(e))
	fields := make([]string, 0, len(e))
	for _, ve := range e {
		if _, ok := seen[ve.Field]; ok {
			continue
		}
		seen[ve.Field] = struct{}{}
		fields = append(fields, ve.Field)
	}
	return fields
}

// Translate rewrites messages in place using fn.
// Errors without a translation key keep their message. A nil fn is a no-op.
func (e ValidationErrors) Translate(fn TranslateFunc) {
	if fn == nil {
		return
	}
	for i := range e {
		if e[i].TranslationKey == "" {
			continue
		}
		e[i].Message = fn(e[i].TranslationKey, e[i].TranslationValues)
	}
}

// NewFieldError builds a single-entry ValidationErrors for field.
// Used for errors discovered outside Apply, such as unique constraint conflicts.
func NewFieldError(field, message string) ValidationErrors {
	return ValidationErrors{{
		Field:             field,
		Message:           message,
		TranslationKey:    "validation.custom",
		TranslationValues: map[string]any{"field": field},
	}}
}

// IsValidationError reports whether err is, or wraps, validation errors.
func IsValidationError(err error) bool {
	return ExtractValidationErrors(err) != nil
}

// ExtractValidationErrors returns the validation errors carried by err.
// Returns nil if err carries none.
func ExtractValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}
	var ves ValidationErrors
	if errors.As(err, &ves) {
		return ves
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return ValidationErrors{ve}
	}
	return nil
}

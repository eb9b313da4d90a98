// Package validator provides rule-based input validation with field-scoped errors.
//
// Rules are plain values built by small constructors and evaluated together
// with [Apply]. Every failing rule contributes one [ValidationError] carrying
// the field name, a default English message and a translation key, so callers
// can render errors next to the offending input or translate them first.
//
// # Usage
//
//	err := validator.Apply(
//	    validator.RequiredString("name", in.Name),
//	    validator.MaxLenString("name", in.Name, 255),
//	    validator.OneOf("type", string(in.Type), "SMS", "VOICE", "EMAIL"),
//	)
//	if validator.IsValidationError(err) {
//	    errs := validator.ExtractValidationErrors(err)
//	    // errs.Get("name") ...
//	}
//
// # Struct tags
//
// [ValidateStruct] evaluates `validate` tags using a semicolon separated rule
// list, for example `validate:"required;min:2;max:100"`. Supported rules:
// required, min, max, len, oneof (pipe separated values).
package validator

// Package errutil classifies errors for form rendering: errors attributed to
// an input field are shown next to it, everything else goes to the form's
// banner.
package errutil

import (
	"errors"
	"slices"

	"github.com/oncallkit/notifydesk/pkg/gql"
	"github.com/oncallkit/notifydesk/pkg/validator"
)

// Split partitions err into field errors for the given fields and non-field
// errors. Field errors naming any other field are returned as non-field
// errors so that nothing is dropped. With no fields, every field error is
// kept as such.
func Split(err error, fields ...string) (validator.ValidationErrors, []error) {
	if err == nil {
		return nil, nil
	}

	fieldErrs, rest := collect(err)
	if len(fields) == 0 {
		return fieldErrs, rest
	}

	var kept validator.ValidationErrors
	for _, fe := range fieldErrs {
		if slices.Contains(fields, fe.Field) {
			kept = append(kept, fe)
			continue
		}
		rest = append(rest, fe)
	}
	return kept, rest
}

// FieldErrors returns every field-attributed error in err.
func FieldErrors(err error) validator.ValidationErrors {
	fe, _ := collect(err)
	return fe
}

// NonFieldErrors returns the errors in err that are not attributed to a field.
func NonFieldErrors(err error) []error {
	_, rest := collect(err)
	return rest
}

// Messages renders errs as strings.
func Messages(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// collect follows the wrap chain of err until it reaches validation errors,
// GraphQL errors or a joined error, whose branches are collected in turn.
// Errors carrying none of these are non-field errors as a whole, and so is a
// joined error none of whose branches is attributed to a field.
func collect(err error) (validator.ValidationErrors, []error) {
	for e := err; e != nil; {
		switch v := e.(type) {
		case validator.ValidationErrors:
			return v, nil
		case validator.ValidationError:
			return validator.ValidationErrors{v}, nil
		case *validator.ValidationError:
			return validator.ValidationErrors{*v}, nil
		case gql.Errors:
			return splitGraphQL(v)
		case interface{ Unwrap() []error }:
			var fe validator.ValidationErrors
			var rest []error
			for _, branch := range v.Unwrap() {
				f, r := collect(branch)
				fe = append(fe, f...)
				rest = append(rest, r...)
			}
			if len(fe) == 0 {
				return nil, []error{e}
			}
			return fe, rest
		}
		e = errors.Unwrap(e)
	}
	if err == nil {
		return nil, nil
	}
	return nil, []error{err}
}

func splitGraphQL(errs gql.Errors) (validator.ValidationErrors, []error) {
	var fe validator.ValidationErrors
	var rest []error
	for _, ge := range errs {
		if name := ge.FieldName(); name != "" {
			fe = append(fe, validator.NewFieldError(name, ge.Message)...)
			continue
		}
		rest = append(rest, ge)
	}
	return fe, rest
}

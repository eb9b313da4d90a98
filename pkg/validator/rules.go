package validator

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Rule is a single validation check bound to a field.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply evaluates rules in order and returns ValidationErrors for every rule
// that fails. Returns nil when all rules pass.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, r := range rules {
		if r.Check == nil || r.Check() {
			continue
		}
		errs = append(errs, r.Error)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func rule(field, message, key string, values map[string]any, check func() bool) Rule {
	if values == nil {
		values = map[string]any{}
	}
	values["field"] = field
	return Rule{
		Check: check,
		Error: ValidationError{
			Field:             field,
			Message:           message,
			TranslationKey:    key,
			TranslationValues: values,
		},
	}
}

// RequiredString fails when value is empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return rule(field, "is required", "validation.required", nil, func() bool {
		return strings.TrimSpace(value) != ""
	})
}

// MinLenString fails when value has fewer than n runes.
func MinLenString(field, value string, n int) Rule {
	return rule(field, "is too short", "validation.min_length", map[string]any{"min": n}, func() bool {
		return utf8.RuneCountInString(value) >= n
	})
}

// MaxLenString fails when value has more than n runes.
func MaxLenString(field, value string, n int) Rule {
	return rule(field, "is too long", "validation.max_length", map[string]any{"max": n}, func() bool {
		return utf8.RuneCountInString(value) <= n
	})
}

// LenString fails unless value has exactly n runes.
func LenString(field, value string, n int) Rule {
	return rule(field, "has the wrong length", "validation.length", map[string]any{"len": n}, func() bool {
		return utf8.RuneCountInString(value) == n
	})
}

// OneOf fails unless value equals one of allowed.
func OneOf(field, value string, allowed ...string) Rule {
	return rule(field, "is not a supported value", "validation.one_of",
		map[string]any{"allowed": strings.Join(allowed, ", ")},
		func() bool {
			return slices.Contains(allowed, value)
		})
}

// MinNum fails when value is less than lo.
func MinNum[T cmp.Ordered](field string, value, lo T) Rule {
	return rule(field, "is too small", "validation.min", map[string]any{"min": lo}, func() bool {
		return value >= lo
	})
}

// MaxNum fails when value is greater than hi.
func MaxNum[T cmp.Ordered](field string, value, hi T) Rule {
	return rule(field, "is too large", "validation.max", map[string]any{"max": hi}, func() bool {
		return value <= hi
	})
}

// Custom wraps an arbitrary predicate result.
// message is used verbatim; key may be empty to opt out of translation.
func Custom(field string, ok bool, message, key string) Rule {
	return rule(field, message, key, nil, func() bool { return ok })
}

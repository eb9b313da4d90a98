package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ValidateStruct evaluates `validate` tags on the exported string and integer
// fields of the struct pointed to by v. The error field name is taken from the
// `form` tag, then the `json` tag, then the Go field name.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: expected struct, got %s", ErrInvalidTag, rv.Kind())
	}

	var rules []Rule
	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}
		fieldRules, err := tagRules(fieldName(sf), rv.Field(i), tag)
		if err != nil {
			return err
		}
		rules = append(rules, fieldRules...)
	}
	return Apply(rules...)
}

func fieldName(sf reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		if name, _, _ := strings.Cut(sf.Tag.Get(key), ","); name != "" && name != "-" {
			return name
		}
	}
	return sf.Name
}

func tagRules(field string, fv reflect.Value, tag string) ([]Rule, error) {
	var rules []Rule
	for part := range strings.SplitSeq(tag, ";") {
		name, arg, _ := strings.Cut(strings.TrimSpace(part), ":")
		switch fv.Kind() {
		case reflect.String:
			r, err := stringRule(field, fv.String(), name, arg)
			if err != nil {
				return nil, err
			}
			rules = append(rules, r)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			r, err := intRule(field, fv.Int(), name, arg)
			if err != nil {
				return nil, err
			}
			rules = append(rules, r)
		default:
			return nil, fmt.Errorf("%w: unsupported kind %s for field %s", ErrInvalidTag, fv.Kind(), field)
		}
	}
	return rules, nil
}

func stringRule(field, value, name, arg string) (Rule, error) {
	switch name {
	case "required":
		return RequiredString(field, value), nil
	case "oneof":
		return OneOf(field, value, strings.Split(arg, "|")...), nil
	case "min", "max", "len":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: %s:%s", ErrInvalidTag, name, arg)
		}
		switch name {
		case "min":
			return MinLenString(field, value, n), nil
		case "max":
			return MaxLenString(field, value, n), nil
		default:
			return LenString(field, value, n), nil
		}
	}
	return Rule{}, fmt.Errorf("%w: unknown rule %q", ErrInvalidTag, name)
}

func intRule(field string, value int64, name, arg string) (Rule, error) {
	if name == "required" {
		return Custom(field, value != 0, "is required", "validation.required"), nil
	}
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %s:%s", ErrInvalidTag, name, arg)
	}
	switch name {
	case "min":
		return MinNum(field, value, n), nil
	case "max":
		return MaxNum(field, value, n), nil
	}
	return Rule{}, fmt.Errorf("%w: unknown rule %q", ErrInvalidTag, name)
}

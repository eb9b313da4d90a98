package sanitizer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrUnknownTag is returned for an unsupported `sanitize` tag value.
var ErrUnknownTag = errors.New("sanitizer: unknown tag")

var funcs = map[string]func(string) string{
	"trim":   strings.TrimSpace,
	"lower":  strings.ToLower,
	"upper":  strings.ToUpper,
	"spaces": CollapseSpaces,
	"strip":  StripHTML,
	"html":   SanitizeHTML,
}

// SanitizeStruct applies `sanitize` tags to the string fields of the struct
// pointed to by v. Non-pointer and non-struct values are left untouched.
func SanitizeStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		tag := sf.Tag.Get("sanitize")
		fv := rv.Field(i)
		if tag == "" || !fv.CanSet() || fv.Kind() != reflect.String {
			continue
		}
		s := fv.String()
		for name := range strings.SplitSeq(tag, ",") {
			fn, ok := funcs[strings.TrimSpace(name)]
			if !ok {
				return fmt.Errorf("%w: %q on %s", ErrUnknownTag, name, sf.Name)
			}
			s = fn(s)
		}
		fv.SetString(s)
	}
	return nil
}

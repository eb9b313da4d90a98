// Package sanitizer cleans user supplied text before it is validated or stored.
//
// HTML handling is delegated to bluemonday. [StripHTML] removes all markup and
// is used for single line labels such as contact method names. [SanitizeHTML]
// keeps a small set of formatting tags.
//
// [SanitizeStruct] applies `sanitize` struct tags in place:
//
//	type Draft struct {
//	    Name  string `form:"name"  sanitize:"strip,spaces,trim"`
//	    Value string `form:"value" sanitize:"trim"`
//	}
//
// Supported tags: trim, lower, upper, spaces (collapse runs of whitespace),
// strip (remove all HTML), html (allow safe formatting HTML).
package sanitizer

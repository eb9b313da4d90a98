package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	safePolicy   *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements("p", "br", "strong", "b", "em", "i", "code")
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)
	})
}

// StripHTML removes every tag and returns plain text.
// Entities produced by the policy are decoded so "a & b" round-trips unchanged.
func StripHTML(s string) string {
	initPolicies()
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// SanitizeHTML keeps basic formatting tags and drops everything executable.
func SanitizeHTML(s string) string {
	initPolicies()
	return safePolicy.Sanitize(s)
}

// CollapseSpaces replaces every run of whitespace with a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

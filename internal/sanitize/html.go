package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
var StrictPolicy = bluemonday.StrictPolicy()

// Text strips all HTML from input and returns trimmed plain text.
// Entities the policy escapes (&, quotes) are decoded again so that
// "Arts & Culture" round-trips unchanged.
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(StrictPolicy.Sanitize(input)))
}

// Optional sanitizes an optional field. Values that are empty after
// sanitizing become nil.
func Optional(input *string) *string {
	if input == nil {
		return nil
	}
	clean := Text(*input)
	if clean == "" {
		return nil
	}
	return &clean
}

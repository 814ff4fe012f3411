// Package validation checks the URLs the server is configured with.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// URLValidationError names the setting that holds a bad URL.
type URLValidationError struct {
	Field   string
	Message string
	URL     string
}

func (e URLValidationError) Error() string {
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// ValidateURL accepts an absolute http(s) URL. Empty is allowed.
func ValidateURL(raw, field string, requireHTTPS bool) error {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return URLValidationError{Field: field, Message: "invalid URL format", URL: raw}
	}
	if u.Scheme == "" {
		return URLValidationError{Field: field, Message: "URL must include a scheme (http:// or https://)", URL: raw}
	}
	if u.Host == "" {
		return URLValidationError{Field: field, Message: "URL must include a host", URL: raw}
	}

	scheme := strings.ToLower(u.Scheme)
	if requireHTTPS && scheme != "https" {
		return URLValidationError{Field: field, Message: "URL must use HTTPS in production", URL: raw}
	}
	if scheme != "http" && scheme != "https" {
		return URLValidationError{Field: field, Message: "URL scheme must be http or https", URL: raw}
	}
	return nil
}

// ValidateBaseURL checks the public address of the microsite. A trailing
// slash is tolerated; any other path, query or fragment is not.
func ValidateBaseURL(raw, field string, requireHTTPS bool) error {
	if err := ValidateURL(raw, field, requireHTTPS); err != nil || raw == "" {
		return err
	}

	u, _ := url.Parse(raw)
	switch {
	case u.Path != "" && u.Path != "/":
		return URLValidationError{Field: field, Message: "base URL must not contain a path", URL: raw}
	case u.RawQuery != "":
		return URLValidationError{Field: field, Message: "base URL must not contain query parameters", URL: raw}
	case u.Fragment != "":
		return URLValidationError{Field: field, Message: "base URL must not contain a fragment", URL: raw}
	}
	return nil
}

// ValidateOrigin checks a CORS origin. Browsers send origins without a
// path, so even a trailing slash would never match.
func ValidateOrigin(raw, field string) error {
	if raw == "" {
		return URLValidationError{Field: field, Message: "origin must not be empty", URL: raw}
	}
	if err := ValidateBaseURL(raw, field, false); err != nil {
		return err
	}
	if strings.HasSuffix(raw, "/") {
		return URLValidationError{Field: field, Message: "origin must not end with a slash", URL: raw}
	}
	return nil
}

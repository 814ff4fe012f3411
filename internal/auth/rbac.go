package auth

import "strings"

// DefaultAdminRole is the profile role that grants admin access when no
// other tag is configured.
const DefaultAdminRole = "admin"

// IsAdminTag reports whether role equals tag, ignoring case and
// surrounding whitespace. An empty role is never admin.
func IsAdminTag(role, tag string) bool {
	role = strings.TrimSpace(role)
	if role == "" {
		return false
	}
	return strings.EqualFold(role, strings.TrimSpace(tag))
}

// Package session tracks who is signed in and what they may do.
//
// A Resolver follows an identity Provider's session-change notifications,
// looks up the signed-in user's role in a profile store, and fans the
// resulting State out to any number of read-only subscribers. The role
// lookup races a fixed timeout: losing the race leaves the role unknown,
// which is reported distinctly from both "still resolving" and "confirmed
// non-admin".
package session

import (
	"time"

	"github.com/Togather-Foundation/gala/internal/auth"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is a provider-issued authenticated session. Token is opaque to
// everything except the provider.
type Session struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// Status is the role resolution state for the current session.
type Status int

const (
	// StatusNone means nobody is signed in.
	StatusNone Status = iota
	// StatusResolving means a session exists and its role lookup is in flight.
	StatusResolving
	// StatusResolved means the role lookup completed; Role is authoritative.
	StatusResolved
	// StatusRoleUnknown means the lookup timed out or failed. Terminal for
	// the current session.
	StatusRoleUnknown
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusResolving:
		return "resolving"
	case StatusResolved:
		return "resolved"
	case StatusRoleUnknown:
		return "role_unknown"
	default:
		return "invalid"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Access is what an admin-only consumer should do with a State.
type Access int

const (
	// AccessAnonymous: no session; send the user to sign in.
	AccessAnonymous Access = iota
	// AccessPending: role still resolving; show a verifying indicator.
	AccessPending
	// AccessGranted: resolved admin.
	AccessGranted
	// AccessDenied: resolved, not admin.
	AccessDenied
	// AccessUnverified: role lookup timed out or failed. The consumer may
	// redirect, but must not report it as a confirmed denial.
	AccessUnverified
)

func (a Access) String() string {
	switch a {
	case AccessAnonymous:
		return "anonymous"
	case AccessPending:
		return "pending"
	case AccessGranted:
		return "granted"
	case AccessDenied:
		return "denied"
	case AccessUnverified:
		return "unverified"
	default:
		return "invalid"
	}
}

// State is an immutable view of the resolver at one point in time.
type State struct {
	User   *User  `json:"user"`
	Token  string `json:"-"`
	Role   string `json:"role,omitempty"`
	Status Status `json:"status"`

	adminRole string
}

func (s State) UserPresent() bool {
	return s.User != nil
}

// IsAdmin is true only for a resolved role equal to the admin tag.
func (s State) IsAdmin() bool {
	if s.Status != StatusResolved {
		return false
	}
	tag := s.adminRole
	if tag == "" {
		tag = auth.DefaultAdminRole
	}
	return auth.IsAdminTag(s.Role, tag)
}

func (s State) IsLoading() bool {
	return s.Status == StatusResolving
}

// Settled reports whether no role lookup is in flight.
func (s State) Settled() bool {
	return s.Status != StatusResolving
}

func (s State) Access() Access {
	if s.User == nil {
		return AccessAnonymous
	}
	switch s.Status {
	case StatusResolving:
		return AccessPending
	case StatusRoleUnknown:
		return AccessUnverified
	case StatusResolved:
		if s.IsAdmin() {
			return AccessGranted
		}
		return AccessDenied
	default:
		return AccessAnonymous
	}
}

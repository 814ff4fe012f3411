package session

import "errors"

var (
	ErrRoleLookupTimeout = errors.New("role lookup timed out")
	ErrRoleLookupFailed  = errors.New("role lookup failed")

	// ErrProfileNotFound is returned by a RoleLookup when the user has no
	// profile row. The session resolves with no role.
	ErrProfileNotFound = errors.New("profile not found")

	ErrNoSession      = errors.New("no active session")
	ErrResolverClosed = errors.New("session resolver closed")
)

const (
	CodeInvalidCredentials  = "invalid_credentials"
	CodeProviderUnavailable = "provider_unavailable"
)

// AuthError is a sign-in failure suitable for display. Message never says
// whether the email or the password was wrong.
type AuthError struct {
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

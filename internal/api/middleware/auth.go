package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Togather-Foundation/gala/internal/api/problem"
	"github.com/Togather-Foundation/gala/internal/auth"
	"github.com/Togather-Foundation/gala/internal/session"
	"github.com/rs/zerolog"
)

// SessionCookieName carries the session token for browser clients.
const SessionCookieName = "gala_session"

type contextKeyAuth string

const principalKey contextKeyAuth = "principal"

// Principal is the verified admin behind a request.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

// TokenVerifier turns a session token into an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// TokenSource extracts a session token from a request.
type TokenSource func(*http.Request) (string, error)

// BearerToken reads the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	return auth.TokenFromHeader(r.Header.Get("Authorization"))
}

// CookieToken reads the session cookie.
func CookieToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", auth.ErrMissingToken
	}
	return cookie.Value, nil
}

// AdminGuard decides admin access per request. The role is looked up on
// every request with the same timeout race the resolver uses, so a slow
// profile store yields 503 rather than a false 403.
type AdminGuard struct {
	verifier  TokenVerifier
	roles     session.RoleLookup
	timeout   time.Duration
	adminRole string
	env       string
	logger    zerolog.Logger
}

func NewAdminGuard(verifier TokenVerifier, roles session.RoleLookup, timeout time.Duration, adminRole, env string, logger zerolog.Logger) *AdminGuard {
	return &AdminGuard{
		verifier:  verifier,
		roles:     roles,
		timeout:   timeout,
		adminRole: adminRole,
		env:       env,
		logger:    logger.With().Str("component", "admin_guard").Logger(),
	}
}

// RequireAdmin admits only resolved admins.
//
//	no or invalid token  401
//	lookup timed out     503 verifying-access with Retry-After
//	resolved non-admin   403
func (g *AdminGuard) RequireAdmin(source TokenSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := source(r)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, g.env,
					problem.WithHeader("WWW-Authenticate", `Bearer realm="gala"`))
				return
			}

			identity, err := g.verifier.Verify(token)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid or expired session", err, g.env,
					problem.WithHeader("WWW-Authenticate", `Bearer realm="gala", error="invalid_token"`))
				return
			}

			user := session.User{ID: identity.UserID, Email: identity.Email}
			outcome := session.ResolveRole(r.Context(), g.roles, user.ID, g.timeout, *LoggerFromContext(r.Context()))
			state := outcome.For(user, g.adminRole)

			switch state.Access() {
			case session.AccessGranted:
				ctx := ContextWithPrincipal(r.Context(), Principal{UserID: user.ID, Email: user.Email, Role: state.Role})
				next.ServeHTTP(w, r.WithContext(ctx))
			case session.AccessUnverified:
				problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeVerifyingAccess, "Verifying access", outcome.Err, g.env,
					problem.WithDetail("Your access could not be verified yet. Try again shortly."),
					problem.WithRetryAfter(g.timeout))
			default:
				g.logger.Info().Str("user_id", user.ID).Str("role", state.Role).Str("path", r.URL.Path).Msg("admin access denied")
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Admin access required", errors.New("not an admin"), g.env)
			}
		})
	}
}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the admin set by RequireAdmin.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Togather-Foundation/gala/internal/api/middleware"
	"github.com/Togather-Foundation/gala/internal/api/problem"
	"github.com/Togather-Foundation/gala/internal/auth"
	"github.com/Togather-Foundation/gala/internal/session"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (auth.Identity, error)
	Verify(token string) (auth.Identity, error)
}

type LoginRecorder interface {
	RecordLogin(ctx context.Context, userID string) error
}

// AuthHandler signs users in and out and reports the caller's session
// state. The role in every response comes from the profile store, looked
// up with the same timeout race the admin guard uses.
type AuthHandler struct {
	Auth          Authenticator
	Roles         session.RoleLookup
	Logins        LoginRecorder
	RoleTimeout   time.Duration
	AdminRole     string
	SecureCookies bool
	Env           string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User      *session.User  `json:"user"`
	Role      string         `json:"role,omitempty"`
	Status    session.Status `json:"status"`
	Access    string         `json:"access"`
	IsAdmin   bool           `json:"is_admin"`
	Token     string         `json:"token,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// Login handles POST /api/v1/auth/login. Unknown emails, wrong passwords
// and disabled accounts all get the same 401. The token is returned in the
// body for API clients and as an HttpOnly cookie for the browser.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err, h.Env)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeBadRequest, "Email and password are required", nil, h.Env)
		return
	}

	identity, err := h.Auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid credentials", nil, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Sign-in failed", err, h.Env)
		return
	}

	if h.Logins != nil {
		if err := h.Logins.RecordLogin(r.Context(), identity.UserID); err != nil {
			middleware.LoggerFromContext(r.Context()).Warn().Err(err).Str("user_id", identity.UserID).Msg("record login failed")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    identity.Token,
		Path:     "/",
		Expires:  identity.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})

	resp := h.describe(r, identity)
	resp.Token = identity.Token
	resp.ExpiresAt = &identity.ExpiresAt
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless, so
// signing out clears the cookie and the client discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/v1/auth/session. No token is an anonymous
// session, not an error.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r)
	if err != nil {
		token, err = middleware.CookieToken(r)
	}
	if err != nil {
		writeJSON(w, http.StatusOK, sessionResponse{
			Status: session.StatusNone,
			Access: session.AccessAnonymous.String(),
		})
		return
	}

	identity, err := h.Auth.Verify(token)
	if err != nil {
		h.clearCookie(w)
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid or expired session", err, h.Env)
		return
	}
	resp := h.describe(r, identity)
	if !identity.ExpiresAt.IsZero() {
		resp.ExpiresAt = &identity.ExpiresAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) describe(r *http.Request, identity auth.Identity) sessionResponse {
	user := session.User{ID: identity.UserID, Email: identity.Email}
	outcome := session.ResolveRole(r.Context(), h.Roles, user.ID, h.RoleTimeout, *middleware.LoggerFromContext(r.Context()))
	state := outcome.For(user, h.AdminRole)
	return sessionResponse{
		User:    state.User,
		Role:    state.Role,
		Status:  state.Status,
		Access:  state.Access().String(),
		IsAdmin: state.IsAdmin(),
	}
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/Togather-Foundation/gala/internal/api/problem"
	"github.com/gorilla/csrf"
)

// CSRFHeader is the request header carrying the token for cookie-authenticated
// admin writes.
const CSRFHeader = "X-CSRF-Token"

// CSRFProtection guards the cookie-authenticated admin API with gorilla/csrf's
// double-submit token. Bearer-token routes do not need it. When secure is
// false requests are treated as plain HTTP for local development.
func CSRFProtection(authKey []byte, secure bool, env string) func(http.Handler) http.Handler {
	protect := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/admin"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.ErrorHandler(csrfErrorHandler(env)),
	)
	if secure {
		return protect
	}
	return func(next http.Handler) http.Handler {
		inner := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inner.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

func csrfErrorHandler(env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := csrf.FailureReason(r)
		if reason == nil {
			reason = errors.New("csrf validation failed")
		}
		problem.Write(w, r, http.StatusForbidden, problem.TypeCSRF, "CSRF token validation failed", reason, env)
	})
}

// CSRFToken returns the masked token for the current request.
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Togather-Foundation/gala/internal/api/handlers"
	"github.com/Togather-Foundation/gala/internal/api/middleware"
	"github.com/Togather-Foundation/gala/internal/auth"
	"github.com/Togather-Foundation/gala/internal/config"
	"github.com/Togather-Foundation/gala/internal/metrics"
	"github.com/Togather-Foundation/gala/internal/session"
	"github.com/Togather-Foundation/gala/web"
	"github.com/rs/zerolog"
)

// Dependencies are the services the HTTP layer talks to. cmd/server fills
// them from the postgres repository; tests use fakes.
type Dependencies struct {
	Snapshots handlers.SnapshotReader
	Content   handlers.ContentEditor
	Auth      handlers.Authenticator
	Roles     session.RoleLookup
	Logins    handlers.LoginRecorder
	DB        handlers.Pinger
	Galas     handlers.ActiveGalaFinder
	Build     BuildInfo
}

// NewRouter builds the full handler chain. ctx bounds the rate limiter's
// background cleanup.
func NewRouter(ctx context.Context, cfg config.Config, logger zerolog.Logger, deps Dependencies) (http.Handler, error) {
	env := cfg.Environment
	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")

	csrfKey, err := auth.CSRFKey(cfg.Auth.CSRFKey, cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("csrf key: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, env)
	go limiter.Run(ctx)

	galasHandler := handlers.NewGalasHandler(deps.Snapshots, cfg.Search.MaxSuggestions, env)
	adminHandler := handlers.NewAdminHandler(deps.Content, env)
	authHandler := &handlers.AuthHandler{
		Auth:          deps.Auth,
		Roles:         deps.Roles,
		Logins:        deps.Logins,
		RoleTimeout:   cfg.Session.RoleLookupTimeout,
		AdminRole:     cfg.Session.AdminRole,
		SecureCookies: secure,
		Env:           env,
	}
	health := handlers.NewHealthChecker(deps.DB, deps.Galas, deps.Build.Version, deps.Build.GitCommit)
	guard := middleware.NewAdminGuard(deps.Auth, deps.Roles, cfg.Session.RoleLookupTimeout, cfg.Session.AdminRole, env, logger)

	public := chain(middleware.WithRateLimitTierHandler(middleware.TierPublic), limiter.Middleware, middleware.RequestSize(middleware.PublicMaxBodySize))
	login := chain(middleware.WithRateLimitTierHandler(middleware.TierLogin), limiter.Middleware, middleware.RequestSize(middleware.PublicMaxBodySize))
	bearerAdmin := chain(middleware.WithRateLimitTierHandler(middleware.TierAdmin), limiter.Middleware, middleware.RequestSize(middleware.AdminMaxBodySize), guard.RequireAdmin(middleware.BearerToken))
	cookieAdmin := chain(middleware.CSRFProtection(csrfKey, secure, env), middleware.WithRateLimitTierHandler(middleware.TierAdmin), limiter.Middleware, middleware.RequestSize(middleware.AdminMaxBodySize), guard.RequireAdmin(middleware.CookieToken))

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", web.IndexHandler())
	mux.Handle("GET /robots.txt", web.RobotsTxtHandler())
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", health.Readyz())
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /version", VersionHandler(deps.Build))
	mux.Handle("GET /api/v1/openapi.json", OpenAPIHandler(env))
	mux.Handle("GET /api/v1/openapi.yaml", OpenAPIHandler(env))

	mux.Handle("GET /api/v1/galas/active", public(http.HandlerFunc(galasHandler.Active)))
	mux.Handle("GET /api/v1/galas/{id}", public(http.HandlerFunc(galasHandler.Get)))
	mux.Handle("GET /api/v1/galas/{id}/suggestions", public(http.HandlerFunc(galasHandler.Suggestions)))

	mux.Handle("POST /api/v1/auth/login", login(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/v1/auth/logout", public(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/v1/auth/session", public(http.HandlerFunc(authHandler.Session)))

	mountAdmin(mux, "/api/v1/admin", adminHandler, bearerAdmin)
	mountAdmin(mux, "/admin/api", adminHandler, cookieAdmin)
	mux.Handle("GET /admin/api/csrf", cookieAdmin(http.HandlerFunc(adminHandler.CSRFToken)))

	var handler http.Handler = mux
	handler = middleware.SecurityHeaders(secure)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	return handler, nil
}

// mountAdmin registers the content editing routes under prefix.
func mountAdmin(mux *http.ServeMux, prefix string, h *handlers.AdminHandler, wrap func(http.Handler) http.Handler) {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"POST " + prefix + "/galas", h.CreateGala},
		{"PUT " + prefix + "/galas/{galaID}", h.UpdateGala},
		{"DELETE " + prefix + "/galas/{galaID}", h.DeleteGala},
		{"POST " + prefix + "/galas/{galaID}/refetch", h.Refetch},
		{"POST " + prefix + "/galas/{galaID}/{kind}", h.Create},
		{"PUT " + prefix + "/galas/{galaID}/{kind}/{id}", h.Update},
		{"DELETE " + prefix + "/galas/{galaID}/{kind}/{id}", h.Delete},
	}
	for _, route := range routes {
		mux.Handle(route.pattern, wrap(route.handler))
	}
}

// chain applies middlewares so the first one listed runs first.
func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Togather-Foundation/gala/internal/audit"
	"github.com/Togather-Foundation/gala/internal/auth"
	"github.com/Togather-Foundation/gala/internal/config"
	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/Togather-Foundation/gala/internal/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubContent struct {
	snap  *gala.Snapshot
	saved []gala.Record
}

func (s *stubContent) Snapshot(_ context.Context, id string) (*gala.Snapshot, error) {
	if id != s.snap.Gala.ID {
		return nil, gala.ErrNotFound
	}
	return s.snap, nil
}

func (s *stubContent) ActiveSnapshot(_ context.Context) (*gala.Snapshot, error) {
	return s.snap, nil
}

func (s *stubContent) ActiveGalaID(_ context.Context) (string, error) {
	return s.snap.Gala.ID, nil
}

func (s *stubContent) Save(_ context.Context, _ audit.Actor, _ string, rec gala.Record) (gala.Record, error) {
	s.saved = append(s.saved, rec)
	return rec, nil
}

func (s *stubContent) Delete(context.Context, audit.Actor, string, gala.Kind, string) error {
	return nil
}

func (s *stubContent) Refetch(_ context.Context, _ string) (*gala.Snapshot, error) {
	return s.snap, nil
}

type stubAuth struct{}

func (stubAuth) Authenticate(context.Context, string, string) (auth.Identity, error) {
	return auth.Identity{}, auth.ErrInvalidCredentials
}

func (stubAuth) Verify(token string) (auth.Identity, error) {
	switch token {
	case "admin-token":
		return auth.Identity{UserID: "u-admin", Email: "admin@gala.test", Token: token}, nil
	case "member-token":
		return auth.Identity{UserID: "u-member", Email: "member@gala.test", Token: token}, nil
	}
	return auth.Identity{}, errors.New("bad token")
}

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

func testRouter(t *testing.T) (http.Handler, *stubContent) {
	t.Helper()
	content := &stubContent{snap: &gala.Snapshot{
		Gala: gala.Gala{ID: "g1", Name: "Creative Africa Awards", Year: 2026, IsActive: true},
		Categories: []gala.Category{
			{ID: "c1", GalaID: "g1", Name: "Design Graphique"},
		},
	}}

	cfg := config.Defaults()
	cfg.Environment = "test"
	cfg.Database.URL = "postgres://unused"
	cfg.Auth.JWTSecret = "router-test-secret"
	cfg.CORS.AllowAllOrigins = true

	roles := session.RoleLookupFunc(func(_ context.Context, userID string) (string, error) {
		if userID == "u-admin" {
			return "admin", nil
		}
		return "member", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h, err := NewRouter(ctx, cfg, zerolog.Nop(), Dependencies{
		Snapshots: content,
		Content:   content,
		Auth:      stubAuth{},
		Roles:     roles,
		DB:        stubPinger{},
		Galas:     content,
		Build:     BuildInfo{Version: "1.2.3", GitCommit: "abc123", BuildDate: "2026-10-01"},
	})
	require.NoError(t, err)
	return h, content
}

func do(h http.Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicRoutes(t *testing.T) {
	h, _ := testRouter(t)

	rec := do(h, http.MethodGet, "/api/v1/galas/active", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(h, http.MethodGet, "/api/v1/galas/g1/suggestions?q=design&section=categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Suggestions []struct {
			ID string `json:"id"`
		} `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Suggestions, 1)
	assert.Equal(t, "c1", body.Suggestions[0].ID)

	rec = do(h, http.MethodGet, "/api/v1/galas/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h, _ := testRouter(t)

	rec := do(h, http.MethodPost, "/api/v1/galas/active", "{}", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Header().Get("Allow"), http.MethodGet)
}

func TestRouter_MetaEndpoints(t *testing.T) {
	h, _ := testRouter(t)

	for _, path := range []string{"/", "/robots.txt", "/healthz", "/readyz", "/metrics", "/version", "/api/v1/openapi.json"} {
		rec := do(h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := do(h, http.MethodGet, "/version", "", nil)
	assert.Contains(t, rec.Body.String(), "1.2.3")
}

func TestRouter_BearerAdmin(t *testing.T) {
	h, content := testRouter(t)
	body := `{"gala_id":"g1","name":"Innovation"}`

	rec := do(h, http.MethodPost, "/api/v1/admin/galas/g1/categories", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/admin/galas/g1/categories", body, http.Header{"Authorization": {"Bearer member-token"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/admin/galas/g1/categories", body, http.Header{"Authorization": {"Bearer admin-token"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, content.saved, 1)
	assert.Equal(t, gala.KindCategory, content.saved[0].RecordKind())
}

func TestRouter_CookieAdminRequiresCSRFToken(t *testing.T) {
	h, content := testRouter(t)
	cookie := &http.Cookie{Name: "gala_session", Value: "admin-token"}

	req := httptest.NewRequest(http.MethodPost, "/admin/api/galas/g1/refetch", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/api/csrf", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tok struct {
		Token  string `json:"token"`
		Header string `json:"header"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.Token)

	req = httptest.NewRequest(http.MethodPost, "/admin/api/galas/g1/sponsors", strings.NewReader(`{"name":"Orange"}`))
	req.AddCookie(cookie)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	req.Header.Set(tok.Header, tok.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, content.saved, 1)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h, _ := testRouter(t)

	rec := do(h, http.MethodOptions, "/api/v1/auth/login", "", http.Header{
		"Origin":                        {"https://gala.example"},
		"Access-Control-Request-Method": {"POST"},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://gala.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	h, _ := testRouter(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = do(h, http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.c","password":"x"}`, nil)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := chain(mark("a"), mark("b"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b"}, order)
}

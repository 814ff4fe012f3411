package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type activeFunc func(ctx context.Context) (string, error)

func (f activeFunc) ActiveGalaID(ctx context.Context) (string, error) { return f(ctx) }

func readyz(t *testing.T, h *HealthChecker) (int, HealthCheck) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Readyz().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	var body HealthCheck
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func TestReadyz(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	active := activeFunc(func(context.Context) (string, error) { return "g1", nil })
	none := activeFunc(func(context.Context) (string, error) { return "", gala.ErrNoActiveGala })

	tests := []struct {
		name   string
		db     Pinger
		galas  ActiveGalaFinder
		code   int
		status string
	}{
		{name: "healthy", db: ok, galas: active, code: http.StatusOK, status: "healthy"},
		{name: "no active gala", db: ok, galas: none, code: http.StatusOK, status: "degraded"},
		{name: "database down", db: down, galas: active, code: http.StatusServiceUnavailable, status: "unhealthy"},
		{name: "no database", galas: active, code: http.StatusServiceUnavailable, status: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := readyz(t, NewHealthChecker(tt.db, tt.galas, "1.2.3", "abc"))
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, "1.2.3", body.Version)
			assert.Contains(t, body.Checks, "database")
			assert.Contains(t, body.Checks, "active_gala")
		})
	}
}

func TestReadyz_DatabaseTimeout(t *testing.T) {
	slow := pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	h := NewHealthChecker(slow, nil, "dev", "")

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	res := h.checkDatabase(ctx)
	assert.Equal(t, "fail", res.Status)
	assert.Equal(t, "database ping timed out", res.Message)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Togather-Foundation/gala/internal/domain/gala"
)

const checkTimeout = 2 * time.Second

// HealthCheck is the readiness report.
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type ActiveGalaFinder interface {
	ActiveGalaID(ctx context.Context) (string, error)
}

// HealthChecker reports whether the server can serve content. A failing
// database makes it unready; a missing active gala only degrades it.
type HealthChecker struct {
	db        Pinger
	galas     ActiveGalaFinder
	version   string
	gitCommit string
	now       func() time.Time
}

func NewHealthChecker(db Pinger, galas ActiveGalaFinder, version, gitCommit string) *HealthChecker {
	return &HealthChecker{db: db, galas: galas, version: version, gitCommit: gitCommit, now: time.Now}
}

// Healthz is the liveness probe; it never touches dependencies.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Readyz is the readiness probe.
func (h *HealthChecker) Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Context().Err() != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
			return
		}

		checks := map[string]CheckResult{
			"database":    h.checkDatabase(r.Context()),
			"active_gala": h.checkActiveGala(r.Context()),
		}

		overall, code := "healthy", http.StatusOK
		for _, c := range checks {
			if c.Status == "fail" {
				overall, code = "unhealthy", http.StatusServiceUnavailable
				break
			}
			if c.Status == "warn" {
				overall = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(HealthCheck{
			Status:    overall,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
	})
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "database not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start).Milliseconds()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CheckResult{Status: "fail", Message: "database ping timed out", LatencyMs: latency}
	case err != nil:
		return CheckResult{Status: "fail", Message: "database unreachable", LatencyMs: latency}
	}
	return CheckResult{Status: "pass", LatencyMs: latency}
}

func (h *HealthChecker) checkActiveGala(ctx context.Context) CheckResult {
	if h.galas == nil {
		return CheckResult{Status: "warn", Message: "content store not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	_, err := h.galas.ActiveGalaID(ctx)
	latency := time.Since(start).Milliseconds()
	switch {
	case errors.Is(err, gala.ErrNoActiveGala):
		return CheckResult{Status: "warn", Message: "no gala is marked active", LatencyMs: latency}
	case err != nil:
		return CheckResult{Status: "fail", Message: "active gala lookup failed", LatencyMs: latency}
	}
	return CheckResult{Status: "pass", LatencyMs: latency}
}

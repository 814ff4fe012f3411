package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformHealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		responseBody   interface{}
		expectHealthy  bool
		expectError    bool
		expectedStatus string
	}{
		{
			name:       "healthy server",
			statusCode: http.StatusOK,
			responseBody: HealthResponse{
				Status: "healthy",
				Checks: map[string]CheckResult{"database": {Status: "pass"}},
			},
			expectHealthy:  true,
			expectedStatus: "healthy",
		},
		{
			name:       "degraded server",
			statusCode: http.StatusOK,
			responseBody: HealthResponse{
				Status: "degraded",
				Checks: map[string]CheckResult{
					"database":    {Status: "pass"},
					"active_gala": {Status: "warn"},
				},
			},
			expectedStatus: "degraded",
		},
		{
			name:           "unhealthy server (503)",
			statusCode:     http.StatusServiceUnavailable,
			responseBody:   HealthResponse{Status: "unhealthy"},
			expectedStatus: "unhealthy",
		},
		{
			name:         "invalid response",
			statusCode:   http.StatusOK,
			responseBody: "not json",
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if str, ok := tt.responseBody.(string); ok {
					fmt.Fprint(w, str)
				} else {
					_ = json.NewEncoder(w).Encode(tt.responseBody)
				}
			}))
			defer server.Close()

			result := performHealthCheck(server.URL, 5*time.Second)

			assert.Equal(t, tt.expectHealthy, result.IsHealthy)
			if tt.expectError {
				assert.NotEmpty(t, result.Error)
			} else {
				assert.Equal(t, tt.expectedStatus, result.Status)
			}
			assert.GreaterOrEqual(t, result.LatencyMs, int64(0))
		})
	}
}

func TestPerformHealthCheckTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	result := performHealthCheck(server.URL, 50*time.Millisecond)
	assert.NotEmpty(t, result.Error)
	assert.False(t, result.IsHealthy)
}

func TestDefaultHealthURL(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	assert.Equal(t, "http://localhost:8080/readyz", defaultHealthURL())

	t.Setenv("SERVER_PORT", "9000")
	assert.Equal(t, "http://localhost:9000/readyz", defaultHealthURL())
}

func TestHealthcheckCommand_AllowDegraded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "degraded"})
	}))
	defer server.Close()

	run := func(args ...string) (string, error) {
		root := newRootCommand()
		buf := new(bytes.Buffer)
		root.SetOut(buf)
		root.SetErr(buf)
		root.SetArgs(append([]string{"healthcheck", "--url", server.URL}, args...))
		err := root.Execute()
		return buf.String(), err
	}

	_, err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degraded")

	out, err := run("--allow-degraded")
	require.NoError(t, err)
	assert.Contains(t, out, "degraded")
}

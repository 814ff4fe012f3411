package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestSize(t *testing.T) {
	tests := []struct {
		name     string
		maxBytes int64
		bodySize int
		wantErr  bool
	}{
		{name: "small body", maxBytes: 1024, bodySize: 512},
		{name: "exact limit", maxBytes: 1024, bodySize: 1024},
		{name: "oversized body", maxBytes: 1024, bodySize: 2048, wantErr: true},
		{name: "public limit", maxBytes: PublicMaxBodySize, bodySize: int(PublicMaxBodySize) + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readErr error
			h := RequestSize(tt.maxBytes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, readErr = io.ReadAll(r.Body)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(strings.Repeat("x", tt.bodySize)))
			h.ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantErr {
				var maxErr *http.MaxBytesError
				assert.True(t, errors.As(readErr, &maxErr))
			} else {
				assert.NoError(t, readErr)
			}
		})
	}
}

func TestRequestSize_NoBody(t *testing.T) {
	called := false
	h := RequestSize(AdminMaxBodySize)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/galas/active", nil)
	req.Body = nil
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

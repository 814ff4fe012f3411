package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/api/v1/galas/active":                     "/api/v1/galas/active",
		"/api/v1/galas/{id}/suggestions":           "/api/v1/galas/{param}/suggestions",
		"/api/v1/admin/galas/{galaID}/{kind}/{id}": "/api/v1/admin/galas/{param}/{param}/{param}",
		"/{$}":                                     "/{param}",
		"":                                         "",
		"api/v1/galas/{id}":                        "api/v1/galas/{id}",
	}

	for in, want := range tests {
		assert.Equal(t, want, normalizePath(in), in)
	}
}

func TestRouteLabel(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, "unmatched", routeLabel(req))

	req.Pattern = "POST /admin/api/galas/{galaID}/refetch"
	assert.Equal(t, "/admin/api/galas/{param}/refetch", routeLabel(req))

	req.Pattern = "/healthz"
	assert.Equal(t, "/healthz", routeLabel(req))
}

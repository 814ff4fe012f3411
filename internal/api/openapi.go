package api

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/Togather-Foundation/gala/internal/api/problem"
	"sigs.k8s.io/yaml"
)

//go:embed openapi.yaml
var openAPISource []byte

// openAPIDocument converts the embedded YAML once.
var openAPIDocument = sync.OnceValues(func() ([]byte, error) {
	doc, err := yaml.YAMLToJSON(openAPISource)
	if err != nil {
		return nil, fmt.Errorf("openapi.yaml: %w", err)
	}
	return doc, nil
})

// OpenAPIHandler serves the API description as JSON, or as the source
// YAML when the path ends in .yaml.
func OpenAPIHandler(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		if strings.HasSuffix(r.URL.Path, ".yaml") {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(openAPISource)
			return
		}

		doc, err := openAPIDocument()
		if err != nil {
			w.Header().Del("Cache-Control")
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "OpenAPI document unavailable", err, env)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
	}
}

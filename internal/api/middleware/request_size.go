package middleware

import (
	"net/http"
)

const (
	// PublicMaxBodySize bounds login bodies and other public writes.
	PublicMaxBodySize int64 = 64 << 10

	// AdminMaxBodySize bounds content edits.
	AdminMaxBodySize int64 = 1 << 20
)

// RequestSize wraps the body in http.MaxBytesReader. Handlers see a
// *http.MaxBytesError when decoding an oversized body.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

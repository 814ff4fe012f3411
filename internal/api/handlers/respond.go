package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Togather-Foundation/gala/internal/api/problem"
	"github.com/Togather-Foundation/gala/internal/domain/gala"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads exactly one JSON object into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// writeDecodeError maps a decodeJSON failure onto 400 or 413.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeBadRequest, "Request body too large", err, env)
		return
	}
	problem.Write(w, r, http.StatusBadRequest, problem.TypeBadRequest, "Invalid request", err, env,
		problem.WithDetail(err.Error()))
}

// writeContentError maps gala service errors onto problem responses.
func writeContentError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var verr gala.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make(map[string]interface{}, len(verr.Fields))
		for _, f := range verr.Fields {
			fields[f.Field] = f.Message
		}
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidation, "Validation failed", nil, env,
			problem.WithErrors(fields))
	case errors.Is(err, gala.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", nil, env)
	case errors.Is(err, gala.ErrNoActiveGala):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "No active gala", nil, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Server error", err, env)
	}
}

func pathParam(r *http.Request, key string) string {
	return strings.TrimSpace(r.PathValue(key))
}

package handlers

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/Togather-Foundation/gala/internal/search"
)

// activeAlias lets public clients address the active gala without knowing
// its id.
const activeAlias = "active"

type SnapshotReader interface {
	Snapshot(ctx context.Context, galaID string) (*gala.Snapshot, error)
	ActiveSnapshot(ctx context.Context) (*gala.Snapshot, error)
}

// GalasHandler serves the public, read-only microsite content.
type GalasHandler struct {
	Snapshots      SnapshotReader
	MaxSuggestions int
	Env            string
}

func NewGalasHandler(snapshots SnapshotReader, maxSuggestions int, env string) *GalasHandler {
	return &GalasHandler{Snapshots: snapshots, MaxSuggestions: maxSuggestions, Env: env}
}

type suggestionsResponse struct {
	Query       string              `json:"query"`
	Section     string              `json:"section"`
	Suggestions []search.Suggestion `json:"suggestions"`
}

// Active handles GET /api/v1/galas/active.
func (h *GalasHandler) Active(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, r, activeAlias)
}

// Get handles GET /api/v1/galas/{id}.
func (h *GalasHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, r, pathParam(r, "id"))
}

// Suggestions handles GET /api/v1/galas/{id}/suggestions?q=&section=.
// An unknown section searches category names.
func (h *GalasHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeContentError(w, r, err, h.Env)
		return
	}

	query := r.URL.Query().Get("q")
	section := r.URL.Query().Get("section")
	writeJSON(w, http.StatusOK, suggestionsResponse{
		Query:       query,
		Section:     section,
		Suggestions: search.FilterN(query, section, snap, h.MaxSuggestions),
	})
}

func (h *GalasHandler) writeSnapshot(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := h.snapshot(r.Context(), id)
	if err != nil {
		writeContentError(w, r, err, h.Env)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=30")
	writeJSON(w, http.StatusOK, snap)
}

func (h *GalasHandler) snapshot(ctx context.Context, id string) (*gala.Snapshot, error) {
	if id == "" {
		return nil, gala.ErrNotFound
	}
	if id == activeAlias {
		return h.Snapshots.ActiveSnapshot(ctx)
	}
	return h.Snapshots.Snapshot(ctx, id)
}

package handlers

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/gala/internal/api/middleware"
	"github.com/Togather-Foundation/gala/internal/api/problem"
	"github.com/Togather-Foundation/gala/internal/audit"
	"github.com/Togather-Foundation/gala/internal/domain/gala"
)

type ContentEditor interface {
	Save(ctx context.Context, actor audit.Actor, galaID string, rec gala.Record) (gala.Record, error)
	Delete(ctx context.Context, actor audit.Actor, galaID string, kind gala.Kind, id string) error
	Refetch(ctx context.Context, galaID string) (*gala.Snapshot, error)
}

// AdminHandler edits gala content. Routes are mounted behind
// middleware.RequireAdmin, so a principal is always present.
type AdminHandler struct {
	Content ContentEditor
	Env     string
}

func NewAdminHandler(content ContentEditor, env string) *AdminHandler {
	return &AdminHandler{Content: content, Env: env}
}

// CreateGala handles POST /api/v1/admin/galas.
func (h *AdminHandler) CreateGala(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", gala.KindGala, "")
}

// UpdateGala handles PUT /api/v1/admin/galas/{galaID}.
func (h *AdminHandler) UpdateGala(w http.ResponseWriter, r *http.Request) {
	galaID := pathParam(r, "galaID")
	h.save(w, r, galaID, gala.KindGala, galaID)
}

// DeleteGala handles DELETE /api/v1/admin/galas/{galaID}.
func (h *AdminHandler) DeleteGala(w http.ResponseWriter, r *http.Request) {
	galaID := pathParam(r, "galaID")
	h.delete(w, r, galaID, gala.KindGala, galaID)
}

// Create handles POST /api/v1/admin/galas/{galaID}/{kind}.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	h.save(w, r, pathParam(r, "galaID"), kind, "")
}

// Update handles PUT /api/v1/admin/galas/{galaID}/{kind}/{id}.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	h.save(w, r, pathParam(r, "galaID"), kind, pathParam(r, "id"))
}

// Delete handles DELETE /api/v1/admin/galas/{galaID}/{kind}/{id}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	h.delete(w, r, pathParam(r, "galaID"), kind, pathParam(r, "id"))
}

// Refetch handles POST /api/v1/admin/galas/{galaID}/refetch: drop the
// cached snapshot and return a fresh one.
func (h *AdminHandler) Refetch(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Content.Refetch(r.Context(), pathParam(r, "galaID"))
	if err != nil {
		writeContentError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// CSRFToken handles GET /admin/api/csrf for cookie-authenticated clients.
func (h *AdminHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := middleware.CSRFToken(r)
	w.Header().Set(middleware.CSRFHeader, token)
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "header": middleware.CSRFHeader})
}

func (h *AdminHandler) save(w http.ResponseWriter, r *http.Request, galaID string, kind gala.Kind, id string) {
	rec, err := gala.NewRecord(kind)
	if err != nil {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Unknown content type", err, h.Env)
		return
	}
	if err := decodeJSON(r, rec); err != nil {
		writeDecodeError(w, r, err, h.Env)
		return
	}
	// The path decides identity, never the body.
	gala.SetID(rec, id)

	saved, err := h.Content.Save(r.Context(), actorFrom(r), galaID, rec)
	if err != nil {
		writeContentError(w, r, err, h.Env)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

func (h *AdminHandler) delete(w http.ResponseWriter, r *http.Request, galaID string, kind gala.Kind, id string) {
	if err := h.Content.Delete(r.Context(), actorFrom(r), galaID, kind, id); err != nil {
		writeContentError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// kind parses the {kind} segment. Galas have their own routes.
func (h *AdminHandler) kind(w http.ResponseWriter, r *http.Request) (gala.Kind, bool) {
	kind, err := gala.ParseKind(r.PathValue("kind"))
	if err != nil || kind == gala.KindGala {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Unknown content type", err, h.Env)
		return "", false
	}
	return kind, true
}

func actorFrom(r *http.Request) audit.Actor {
	actor := audit.Actor{IPAddress: audit.ClientIP(r)}
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		actor.UserID = p.UserID
		actor.Email = p.Email
	}
	return actor
}

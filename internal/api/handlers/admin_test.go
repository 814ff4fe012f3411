package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Togather-Foundation/gala/internal/api/middleware"
	"github.com/Togather-Foundation/gala/internal/api/problem"
	"github.com/Togather-Foundation/gala/internal/audit"
	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saveCall struct {
	actor  audit.Actor
	galaID string
	rec    gala.Record
}

type deleteCall struct {
	galaID string
	kind   gala.Kind
	id     string
}

type fakeContent struct {
	saves   []saveCall
	deletes []deleteCall
	saveErr error
	delErr  error
}

func (f *fakeContent) Save(_ context.Context, actor audit.Actor, galaID string, rec gala.Record) (gala.Record, error) {
	f.saves = append(f.saves, saveCall{actor: actor, galaID: galaID, rec: rec})
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if rec.RecordID() == "" {
		gala.SetID(rec, "01NEW")
	}
	return rec, nil
}

func (f *fakeContent) Delete(_ context.Context, _ audit.Actor, galaID string, kind gala.Kind, id string) error {
	f.deletes = append(f.deletes, deleteCall{galaID: galaID, kind: kind, id: id})
	return f.delErr
}

func (f *fakeContent) Refetch(_ context.Context, galaID string) (*gala.Snapshot, error) {
	if galaID != "g1" {
		return nil, gala.ErrNotFound
	}
	return demoSnapshot(), nil
}

func adminRouter(h *AdminHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/admin/galas", h.CreateGala)
	mux.HandleFunc("PUT /api/v1/admin/galas/{galaID}", h.UpdateGala)
	mux.HandleFunc("DELETE /api/v1/admin/galas/{galaID}", h.DeleteGala)
	mux.HandleFunc("POST /api/v1/admin/galas/{galaID}/refetch", h.Refetch)
	mux.HandleFunc("POST /api/v1/admin/galas/{galaID}/{kind}", h.Create)
	mux.HandleFunc("PUT /api/v1/admin/galas/{galaID}/{kind}/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/admin/galas/{galaID}/{kind}/{id}", h.Delete)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.ContextWithPrincipal(r.Context(), middleware.Principal{UserID: "u-admin", Email: "admin@gala.test", Role: "admin"})
		mux.ServeHTTP(w, r.WithContext(ctx))
	})
}

func send(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "198.51.100.7:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAdmin_CreateNominee(t *testing.T) {
	content := &fakeContent{}
	h := adminRouter(NewAdminHandler(content, "test"))

	rec := send(t, h, http.MethodPost, "/api/v1/admin/galas/g1/nominees",
		`{"id":"ignored","category_id":"c1","name":"Studio Y","location":"Nairobi"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, content.saves, 1)
	call := content.saves[0]
	assert.Equal(t, "g1", call.galaID)
	assert.Equal(t, audit.Actor{UserID: "u-admin", Email: "admin@gala.test", IPAddress: "198.51.100.7"}, call.actor)

	nominee, ok := call.rec.(*gala.Nominee)
	require.True(t, ok)
	assert.Equal(t, "Studio Y", nominee.Name)
	assert.Equal(t, "01NEW", nominee.ID, "body ids are ignored on create")

	var out gala.Nominee
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "01NEW", out.ID)
}

func TestAdmin_UpdateUsesPathID(t *testing.T) {
	content := &fakeContent{}
	h := adminRouter(NewAdminHandler(content, "test"))

	rec := send(t, h, http.MethodPut, "/api/v1/admin/galas/g1/sponsors/sp1", `{"id":"sp-other","name":"Orange"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, content.saves, 1)
	assert.Equal(t, "sp1", content.saves[0].rec.RecordID())
}

func TestAdmin_GalaRoutes(t *testing.T) {
	content := &fakeContent{}
	h := adminRouter(NewAdminHandler(content, "test"))

	rec := send(t, h, http.MethodPost, "/api/v1/admin/galas", `{"name":"Creative Africa Awards","year":2027}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "", content.saves[0].galaID)

	rec = send(t, h, http.MethodPut, "/api/v1/admin/galas/g1", `{"name":"Renamed","is_active":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "g1", content.saves[1].galaID)
	assert.Equal(t, "g1", content.saves[1].rec.RecordID())

	rec = send(t, h, http.MethodDelete, "/api/v1/admin/galas/g1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, deleteCall{galaID: "g1", kind: gala.KindGala, id: "g1"}, content.deletes[0])
}

func TestAdmin_Delete(t *testing.T) {
	content := &fakeContent{}
	h := adminRouter(NewAdminHandler(content, "test"))

	rec := send(t, h, http.MethodDelete, "/api/v1/admin/galas/g1/gallery/img1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, deleteCall{galaID: "g1", kind: gala.KindGallery, id: "img1"}, content.deletes[0])

	content.delErr = gala.ErrNotFound
	rec = send(t, h, http.MethodDelete, "/api/v1/admin/galas/g1/gallery/img1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_UnknownKind(t *testing.T) {
	content := &fakeContent{}
	h := adminRouter(NewAdminHandler(content, "test"))

	for _, target := range []string{"/api/v1/admin/galas/g1/tickets", "/api/v1/admin/galas/g1/galas"} {
		rec := send(t, h, http.MethodPost, target, `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
	assert.Empty(t, content.saves)
}

func TestAdmin_ValidationErrors(t *testing.T) {
	content := &fakeContent{saveErr: gala.ValidationError{Fields: []gala.FieldError{
		{Field: "name", Message: "is required"},
		{Field: "category_id", Message: "does not belong to this gala"},
	}}}
	h := adminRouter(NewAdminHandler(content, "test"))

	rec := send(t, h, http.MethodPost, "/api/v1/admin/galas/g1/nominees", `{"category_id":"other"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var p problem.ProblemDetails
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, problem.TypeValidation, p.Type)
	assert.Equal(t, "is required", p.Errors["name"])
	assert.Equal(t, "does not belong to this gala", p.Errors["category_id"])
}

func TestAdmin_BadBody(t *testing.T) {
	content := &fakeContent{}
	h := adminRouter(NewAdminHandler(content, "test"))

	for _, body := range []string{"", "[1]", `{"name":"x","unknown":true}`, `{"name":"x"}{"name":"y"}`} {
		rec := send(t, h, http.MethodPost, "/api/v1/admin/galas/g1/sponsors", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, content.saves)
}

func TestAdmin_Refetch(t *testing.T) {
	h := adminRouter(NewAdminHandler(&fakeContent{}, "test"))

	rec := send(t, h, http.MethodPost, "/api/v1/admin/galas/g1/refetch", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Creative Africa Awards")

	rec = send(t, h, http.MethodPost, "/api/v1/admin/galas/missing/refetch", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

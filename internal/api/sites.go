package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/lumenbrowser/lumen/internal/sites"
)

// ListSites handles GET /users/{userID}/sites. With ?kind= only one of
// the four subtype views comes back.
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}

	var list []sites.Entry
	switch kind := sites.Kind(r.URL.Query().Get("kind")); kind {
	case "":
		list = u.Sites.Sites()
	case sites.KindPermission, sites.KindContent, sites.KindCookie, sites.KindZoomLevel:
		list = u.Sites.ByKind(kind)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("unknown kind"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sites": list})
}

// AddSite handles POST /users/{userID}/sites. The body is the full
// subtype shape; the draft's own validation enforces it.
func (h *Handler) AddSite(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var draft sites.Entry
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	rec, err := u.Sites.Add(draft)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateSite handles PATCH /users/{userID}/sites/{id}. Only the fields
// present in the body change; the kind tag never does.
func (h *Handler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Granted *bool         `json:"granted"`
		Value   any           `json:"value"`
		Cookie  *sites.Cookie `json:"cookie"`
		Level   *float64      `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	rec, err := u.Sites.Update(chi.URLParam(r, "id"), func(e *sites.Entry) {
		if req.Granted != nil {
			e.Granted = req.Granted
		}
		if req.Value != nil {
			e.Value = req.Value
		}
		if req.Cookie != nil {
			e.Cookie = req.Cookie
		}
		if req.Level != nil {
			e.Level = req.Level
		}
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RemoveSite handles DELETE /users/{userID}/sites/{id}.
func (h *Handler) RemoveSite(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	removed, err := u.Sites.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RemovedResponse{Removed: removed})
}

// GetSitePermission handles GET /users/{userID}/sites/permission.
func (h *Handler) GetSitePermission(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	origin := r.URL.Query().Get("origin")
	permType := r.URL.Query().Get("type")
	if origin == "" || permType == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("origin and type are required"))
		return
	}
	e, ok := u.Sites.GetPermission(origin, permType)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// GetSiteContent handles GET /users/{userID}/sites/content.
func (h *Handler) GetSiteContent(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	origin := r.URL.Query().Get("origin")
	contentType := r.URL.Query().Get("type")
	if origin == "" || contentType == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("origin and type are required"))
		return
	}
	e, ok := u.Sites.GetContent(origin, contentType)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

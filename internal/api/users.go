package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenbrowser/lumen/internal/apperr"
	"github.com/lumenbrowser/lumen/internal/user"
)

// Handler holds the API route handlers. Every data route resolves its
// user through the registry first; a profile that is not open is a 404.
type Handler struct {
	reg *user.Registry
}

// NewHandler creates a new Handler over the registry.
func NewHandler(reg *user.Registry) *Handler {
	return &Handler{reg: reg}
}

// userFrom resolves the {userID} route parameter to an open profile.
func (h *Handler) userFrom(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	id := chi.URLParam(r, "userID")
	u, ok := h.reg.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("profile not open"))
		return nil, false
	}
	return u, true
}

// OpenUser handles POST /users.
func (h *Handler) OpenUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req OpenUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	t := user.Type(req.Type)
	if t == "" {
		t = user.TypeNormal
	}
	u, err := h.reg.Open(r.Context(), req.ID, t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse(u))
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, _ *http.Request) {
	users := h.reg.List()
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

// CloseUser handles DELETE /users/{userID}.
func (h *Handler) CloseUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if err := h.reg.Close(id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("profile not open"))
			return
		}
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListExtensions handles GET /users/{userID}/extensions. On incognito
// profiles the capability itself is absent, which surfaces as a conflict
// rather than an empty list.
func (h *Handler) ListExtensions(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	host, err := u.Session.Extensions()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"extensions": host.Loaded()})
}

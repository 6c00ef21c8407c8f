package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumenbrowser/lumen/internal/history"
)

// ListHistory handles GET /users/{userID}/history. With ?q= it serves
// the omnibox search instead of the full listing.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		hits, err := u.History.Search(q, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": hits})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": u.History.Entries()})
}

// ListHistoryGroups handles GET /users/{userID}/history/groups.
func (h *Handler) ListHistoryGroups(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": u.History.Groups()})
}

// AddHistory handles POST /users/{userID}/history.
func (h *Handler) AddHistory(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rec, err := u.History.Add(history.Entry{
		URL:        req.URL,
		Title:      req.Title,
		FaviconURL: req.FaviconURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// RemoveHistory handles DELETE /users/{userID}/history/{id}. A missing
// id is a negative result, not an error.
func (h *Handler) RemoveHistory(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	removed, err := u.History.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RemovedResponse{Removed: removed})
}

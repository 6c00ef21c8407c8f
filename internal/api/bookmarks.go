package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenbrowser/lumen/internal/bookmarks"
)

// ListBookmarks handles GET /users/{userID}/bookmarks. With ?folders=1
// only folder records come back.
func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	var list []bookmarks.Bookmark
	if r.URL.Query().Get("folders") == "1" {
		list = u.Bookmarks.Folders()
	} else {
		list = u.Bookmarks.Bookmarks()
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": list})
}

// AddBookmark handles POST /users/{userID}/bookmarks.
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rec, err := u.Bookmarks.Add(bookmarks.Bookmark{
		URL:      req.URL,
		Title:    req.Title,
		ParentID: req.ParentID,
		IsFolder: req.IsFolder,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateBookmark handles PATCH /users/{userID}/bookmarks/{id}.
func (h *Handler) UpdateBookmark(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpdateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	rec, err := u.Bookmarks.Update(chi.URLParam(r, "id"), func(b *bookmarks.Bookmark) {
		if req.URL != nil {
			b.URL = *req.URL
		}
		if req.Title != nil {
			b.Title = *req.Title
		}
		if req.ParentID != nil {
			b.ParentID = *req.ParentID
		}
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RemoveBookmark handles DELETE /users/{userID}/bookmarks/{id}.
func (h *Handler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	removed, err := u.Bookmarks.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RemovedResponse{Removed: removed})
}

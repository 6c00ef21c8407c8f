package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenbrowser/lumen/internal/downloads"
)

// ListDownloads handles GET /users/{userID}/downloads.
func (h *Handler) ListDownloads(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"downloads": u.Downloads.Downloads()})
}

// ListDownloadGroups handles GET /users/{userID}/downloads/groups.
func (h *Handler) ListDownloadGroups(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": u.Downloads.Groups()})
}

// AddDownload handles POST /users/{userID}/downloads.
func (h *Handler) AddDownload(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rec, err := u.Downloads.Add(downloads.Item{
		URL:        req.URL,
		Filename:   req.Filename,
		SavePath:   req.SavePath,
		TotalBytes: req.TotalBytes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateDownload handles PATCH /users/{userID}/downloads/{id}.
func (h *Handler) UpdateDownload(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpdateDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rec, err := u.Downloads.Update(chi.URLParam(r, "id"), func(i *downloads.Item) {
		if req.State != nil {
			i.State = downloads.State(*req.State)
		}
		if req.SavePath != nil {
			i.SavePath = *req.SavePath
		}
		if req.ReceivedBytes != nil {
			i.ReceivedBytes = *req.ReceivedBytes
		}
		if req.TotalBytes != nil {
			i.TotalBytes = *req.TotalBytes
		}
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RemoveDownload handles DELETE /users/{userID}/downloads/{id}.
func (h *Handler) RemoveDownload(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFrom(w, r)
	if !ok {
		return
	}
	removed, err := u.Downloads.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RemovedResponse{Removed: removed})
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lumenbrowser/lumen/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeServiceError maps the apperr taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrDisabled):
		writeJSON(w, http.StatusForbidden, errorBody("disabled by user settings"))
	case errors.Is(err, apperr.ErrRejected):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("rejected"))
	case errors.Is(err, apperr.ErrUnsupported):
		writeJSON(w, http.StatusConflict, errorBody("not supported for this profile type"))
	case errors.Is(err, apperr.ErrClosed):
		writeJSON(w, http.StatusConflict, errorBody("profile closed"))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

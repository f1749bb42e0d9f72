package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/notemover/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
	Path  string `json:"path,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, path string) {
	writeJSON(w, status, errResponse{Error: msg, Path: path})
}

// writeServiceError maps a service error to 404 for a missing note and 500
// for anything else. Only the 500 case is logged.
func writeServiceError(w http.ResponseWriter, op, path string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found", path)
		return
	}
	slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal error", "")
}

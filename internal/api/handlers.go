package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notemover/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the note path from the wildcard segment.
// Supports encoded slashes from OpenAPI clients (e.g. inbox%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// moveStatus maps a move outcome to an HTTP status. The body always carries
// the full MoveDetail.
func moveStatus(outcome string) int {
	switch outcome {
	case "failed_name_collision", "failed_folder_collision":
		return http.StatusConflict
	case "failed_destination_missing":
		return http.StatusUnprocessableEntity
	case "failed_store_operation":
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// MoveNote handles POST /api/move/*.
//
//	@Summary		Move one note according to the rules
//	@Tags			move
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	MoveDetail
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	MoveDetail
//	@Failure		422		{object}	MoveDetail
//	@Security		BearerAuth
//	@Router			/move/{path} [post]
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required", "")
		return
	}
	d, err := h.svc.MoveNote(r.Context(), path)
	if err != nil {
		writeServiceError(w, "move note", path, err)
		return
	}
	writeJSON(w, moveStatus(d.Outcome), d)
}

// MoveAll handles POST /api/move.
//
//	@Summary		Move every note in the vault according to the rules
//	@Tags			move
//	@Produce		json
//	@Success		200	{object}	MoveAllSummary
//	@Security		BearerAuth
//	@Router			/move [post]
func (h *Handler) MoveAll(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.MoveAll(r.Context())
	if err != nil {
		writeServiceError(w, "move all", "", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Preview handles GET /api/preview/*.
//
//	@Summary		Show where a note would be moved
//	@Tags			move
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	PreviewResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/preview/{path} [get]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required", "")
		return
	}
	p, err := h.svc.Preview(r.Context(), path)
	if err != nil {
		writeServiceError(w, "preview", path, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListRules handles GET /api/rules.
//
//	@Summary		List move rules in evaluation order
//	@Tags			rules
//	@Produce		json
//	@Success		200	{object}	RulesResponse
//	@Security		BearerAuth
//	@Router			/rules [get]
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rules": h.svc.Rules(r.Context()),
	})
}

// History handles GET /api/history.
//
//	@Summary		List recorded moves, newest first
//	@Tags			history
//	@Produce		json
//	@Param			path	query		string	false	"Only moves from or to this path"
//	@Param			limit	query		int		false	"Max records"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	path := q.Get("path")

	recs, err := h.svc.History(r.Context(), path, limit)
	if err != nil {
		writeServiceError(w, "history", path, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"moves": recs,
	})
}

// Status handles GET /api/status.
//
//	@Summary		Trigger mode and indicator
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status(r.Context()))
}

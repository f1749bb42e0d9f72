package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notemover/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/status", h.Status)
	r.Get("/rules", h.ListRules)

	// Manual moves.
	r.Post("/move", h.MoveAll)
	r.Post("/move/*", h.MoveNote)
	r.Get("/preview/*", h.Preview)

	r.Get("/history", h.History)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

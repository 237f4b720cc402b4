package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/streammark/internal/markservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *markservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/patterns", h.ListPatterns)
	r.Post("/patterns", h.AddPattern)
	r.Delete("/patterns/{index}", h.RemovePattern)

	r.Get("/log", h.GetLog)
	r.Post("/log", h.RecordMoment)
	r.Delete("/log", h.ResetLog)

	r.Get("/settings/api-key", h.GetAPIKey)
	r.Put("/settings/api-key", h.PutAPIKey)

	r.Post("/convert", h.Convert)
	r.Get("/exports", h.ListExports)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

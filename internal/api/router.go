package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/mapservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *mapservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Skeletons.
	r.Get("/skeletons/*", h.GetSkeleton)
	r.Post("/refresh/*", h.RefreshSkeleton)

	// Workspace enumeration and graph queries.
	r.Get("/map", h.MapDirectory)
	r.Get("/related", h.RelatedFiles)
	r.Get("/graph", h.Graph)
	r.Get("/stats", h.Stats)

	// Sessions.
	r.Get("/sessions", h.ListSessions)
	r.Post("/sessions", h.SaveSession)
	r.Get("/sessions/{id}", h.GetSession)
	r.Delete("/sessions/{id}", h.DeleteSession)

	// Context artifacts.
	r.Get("/artifacts", h.ListArtifacts)
	r.Post("/artifacts", h.SaveArtifact)
	r.Get("/artifacts/{id}", h.GetArtifact)
	r.Delete("/artifacts/{id}", h.DeleteArtifact)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

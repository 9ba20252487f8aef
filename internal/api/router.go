package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wrenfall/antaloor/internal/docservice"
	"github.com/wrenfall/antaloor/internal/index"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *docservice.Service, db index.EntryIndex, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, db)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Vault contents.
	r.Get("/files", h.ListFiles)

	// Document trees and edits.
	r.Get("/documents/*", h.GetDocument)
	r.Patch("/documents/*", h.SetProperty)
	r.Post("/save/*", h.SaveDocument)
	r.Get("/find/*", h.Find)

	// Language files.
	r.Get("/language/*", h.LanguageStats)
	r.Get("/translations/*", h.Translations)
	r.Get("/aliases/*", h.Aliases)
	r.Get("/categories/*", h.Categories)
	r.Get("/dialog/*", h.DialogGraph)
	r.Get("/compare/*", h.Compare)

	// Cross-file search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(deps Deps, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(deps)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Posts.
	r.Get("/posts/{locale}", h.ListPosts)
	r.Get("/posts/{locale}/{slug}", h.GetPost)
	r.Get("/categories/{locale}", h.Categories)
	r.Get("/search", h.Search)

	// Device settings.
	r.Route("/settings", func(r chi.Router) {
		r.Get("/wireless", h.GetWireless)
		r.Put("/wireless/airplane", h.SetAirplane)
		r.Put("/wireless/wifi", h.SetWifi)
		r.Put("/wireless/bluetooth", h.SetBluetooth)

		r.Get("/reader", h.GetReader)
		r.Patch("/reader", h.UpdateReader)
		r.Post("/reader/preset", h.ApplyReaderPreset)
		r.Post("/reader/reset", h.ResetReader)
	})

	// Browser history.
	r.Get("/browser", h.GetBrowser)
	r.Post("/browser/navigate", h.Navigate)
	r.Post("/browser/back", h.Back)
	r.Post("/browser/forward", h.Forward)

	// Layout migration.
	r.Post("/migrate", h.Migrate)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

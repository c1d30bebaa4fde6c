package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/oasis/internal/device"
	"github.com/starford/oasis/internal/migrate"
	"github.com/starford/oasis/internal/postservice"
)

// MigrateFunc runs the layout migration over the configured posts tree.
type MigrateFunc func(ctx context.Context) (migrate.Report, error)

// Deps are the services the API handlers read from and mutate.
type Deps struct {
	Posts    *postservice.Service
	Wireless *device.WirelessStore
	Reader   *device.ReaderStore
	Browser  *device.Browser
	Migrate  MigrateFunc
}

// Handler holds API route handlers.
type Handler struct {
	posts    *postservice.Service
	wireless *device.WirelessStore
	reader   *device.ReaderStore
	browser  *device.Browser
	migrate  MigrateFunc
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		posts:    d.Posts,
		wireless: d.Wireless,
		reader:   d.Reader,
		browser:  d.Browser,
		migrate:  d.Migrate,
	}
}

// ListPosts handles GET /api/posts/{locale}.
//
//	@Summary		List the posts of a locale, newest first
//	@Tags			posts
//	@Produce		json
//	@Param			locale	path		string	true	"Locale"	example(en-US)
//	@Param			tag		query		string	false	"Filter by tag"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	PostListResponse
//	@Security		BearerAuth
//	@Router			/posts/{locale} [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.posts.ListPosts(r.Context(), locale, q.Get("tag"), limit, offset)
	if err != nil {
		writeError(w, "list posts", err, slog.String("locale", locale))
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: items, Total: total})
}

// GetPost handles GET /api/posts/{locale}/{slug}.
//
//	@Summary		Get a single post
//	@Tags			posts
//	@Produce		json
//	@Param			locale	path		string	true	"Locale"
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	Post
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{locale}/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	locale, slug := chi.URLParam(r, "locale"), chi.URLParam(r, "slug")
	post, err := h.posts.GetPost(r.Context(), locale, slug)
	if err != nil {
		writeError(w, "get post", err, slog.String("locale", locale), slog.String("slug", slug))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Categories handles GET /api/categories/{locale}.
//
//	@Summary		List categories derived from post tags
//	@Tags			posts
//	@Produce		json
//	@Param			locale	path		string	true	"Locale"
//	@Success		200		{object}	CategoryListResponse
//	@Security		BearerAuth
//	@Router			/categories/{locale} [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")
	cats, err := h.posts.Categories(r.Context(), locale)
	if err != nil {
		writeError(w, "categories", err, slog.String("locale", locale))
		return
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: cats})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.posts.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Migrate handles POST /api/migrate.
//
//	@Summary		Flatten category directories into the flat post layout
//	@Tags			migrate
//	@Produce		json
//	@Success		200	{object}	MigrationReport
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/migrate [post]
func (h *Handler) Migrate(w http.ResponseWriter, r *http.Request) {
	if h.migrate == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("migration not configured"))
		return
	}
	rep, err := h.migrate(r.Context())
	if err != nil {
		writeError(w, "migrate", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

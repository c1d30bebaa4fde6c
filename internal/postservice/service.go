// Package postservice answers post queries by combining the posts tree on
// disk with the SQLite index.
package postservice

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/starford/oasis/internal/apperr"
	"github.com/starford/oasis/internal/frontmatter"
	"github.com/starford/oasis/internal/index"
	"github.com/starford/oasis/internal/models"
	"github.com/starford/oasis/internal/storage"
)

// PostListItem is a lightweight item in a list response.
type PostListItem struct {
	Path     string `json:"path"`
	Locale   string `json:"locale"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Tag      string `json:"tag,omitempty"`
	Date     string `json:"date,omitempty"`
	Checksum string `json:"checksum"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    index.PostIndex
}

// NewService creates a new post service.
func NewService(store storage.Provider, db index.PostIndex) *Service {
	return &Service{store: store, db: db}
}

// GetPost reads the flat post <locale>/<slug>.md from storage. The file on
// disk is authoritative; the index only resolves whether the post exists.
func (s *Service) GetPost(_ context.Context, locale, slug string) (*models.Post, error) {
	if locale == "" || slug == "" {
		return nil, apperr.ErrInvalidArgument
	}
	row, _, err := s.db.GetPost(locale, slug)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(row.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}
	title := res.Title
	if title == "" {
		title = slug
	}
	return &models.Post{
		Path:      row.Path,
		Locale:    locale,
		Slug:      slug,
		Title:     title,
		Tag:       res.Tag,
		Date:      res.Date,
		Body:      res.Body,
		Checksum:  storage.Checksum(data),
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// ListPosts returns a page of posts for locale with an optional tag filter,
// plus the total number of matching posts.
func (s *Service) ListPosts(_ context.Context, locale, tag string, limit, offset int) ([]PostListItem, int, error) {
	if locale == "" {
		return nil, 0, apperr.ErrInvalidArgument
	}
	rows, total, err := s.db.ListPosts(locale, tag, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PostListItem, len(rows))
	for i, r := range rows {
		items[i] = PostListItem{
			Path:     r.Path,
			Locale:   r.Locale,
			Slug:     r.Slug,
			Title:    r.Title,
			Tag:      r.Tag,
			Date:     r.Date,
			Checksum: r.Checksum,
		}
	}
	return items, total, nil
}

// Categories returns the categories derived from post tags in locale.
func (s *Service) Categories(_ context.Context, locale string) ([]models.Category, error) {
	if locale == "" {
		return nil, apperr.ErrInvalidArgument
	}
	cats, err := s.db.Categories(locale)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(cats), nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if query == "" {
		return nil, apperr.ErrInvalidArgument
	}
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// Reindex brings the index in line with the posts tree.
func (s *Service) Reindex(logger *slog.Logger) error {
	return index.Sync(s.db, s.store, logger)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package api

import (
	"github.com/starford/oasis/internal/device"
	"github.com/starford/oasis/internal/index"
	"github.com/starford/oasis/internal/migrate"
	"github.com/starford/oasis/internal/models"
	"github.com/starford/oasis/internal/postservice"
)

// Post is the full post response type (aliased from the domain layer).
type Post = models.Post

// PostListItem is a lightweight item in a list response (aliased from the domain layer).
type PostListItem = postservice.PostListItem

// PostListResponse wraps paginated post listings.
type PostListResponse struct {
	Posts []PostListItem `json:"posts" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// CategoryListResponse wraps the categories of a locale.
type CategoryListResponse struct {
	Categories []models.Category `json:"categories" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// ToggleRequest switches a wireless radio or airplane mode.
type ToggleRequest struct {
	Enabled *bool `json:"enabled" example:"true" validate:"required"`
}

// PresetRequest selects a reader theme preset.
type PresetRequest struct {
	Theme string `json:"theme" example:"compact" validate:"required"`
}

// NavigateRequest opens a URL in the browser.
type NavigateRequest struct {
	URL string `json:"url" example:"https://go.dev" validate:"required"`
}

// WirelessSettings is the wireless settings response type.
type WirelessSettings = device.WirelessSettings

// ReaderSettings is the reader settings response type.
type ReaderSettings = device.ReaderSettings

// ReaderPatch is the partial reader settings update body.
type ReaderPatch = device.ReaderPatch

// BrowserState is the browser history response type.
type BrowserState = device.BrowserState

// MigrationReport is returned by POST /migrate.
type MigrationReport = migrate.Report

// Package models defines the domain types for oasis.
package models

import (
	"path"
	"strings"
	"time"
)

// DocumentPath is the logical location of a post file relative to the posts root.
// Category is empty for documents in the flat layout.
type DocumentPath struct {
	Locale   string
	Category string
	Slug     string
}

// Flat reports whether the document sits directly under its locale directory.
func (p DocumentPath) Flat() bool {
	return p.Category == ""
}

// ParseDocumentPath splits a slash-separated path such as "en-US/go/hello.mdx"
// into its parts. ok is false for paths with fewer than two or more than three segments.
func ParseDocumentPath(rel string) (DocumentPath, bool) {
	parts := strings.Split(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "/")
	slug := func(name string) string {
		return strings.TrimSuffix(name, path.Ext(name))
	}
	switch len(parts) {
	case 2:
		return DocumentPath{Locale: parts[0], Slug: slug(parts[1])}, true
	case 3:
		return DocumentPath{Locale: parts[0], Category: parts[1], Slug: slug(parts[2])}, true
	default:
		return DocumentPath{}, false
	}
}

// Post is a parsed post from the flat layout.
type Post struct {
	Path      string    `json:"path"`
	Locale    string    `json:"locale"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Tag       string    `json:"tag,omitempty"`
	Date      string    `json:"date,omitempty"`
	Body      string    `json:"body"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostMetadata is a lightweight representation returned by list operations.
type PostMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category groups posts of one locale that share a tag.
type Category struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

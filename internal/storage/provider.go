// Package storage defines the posts file-system abstraction.
package storage

import (
	"io/fs"

	"github.com/starford/oasis/internal/models"
)

// Provider is the interface for post file operations. All paths are relative
// to the provider root and use the host separator.
type Provider interface {
	// List returns metadata for every post file under dir.
	List(dir string) ([]models.PostMetadata, error)
	// Walk calls fn for every regular file under dir in lexical order.
	Walk(dir string, fn func(rel string, d fs.DirEntry) error) error
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether anything exists at path.
	Exists(path string) (bool, error)
	// SameFile reports whether a and b refer to the same file on disk.
	SameFile(a, b string) (bool, error)
	// ReadDir lists the immediate entries of dir.
	ReadDir(dir string) ([]fs.DirEntry, error)
	// RemoveDirIfEmpty deletes dir only when it has no entries.
	RemoveDirIfEmpty(dir string) (bool, error)
}

// Package testutil provides shared test helpers for setting up post trees and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/oasis/internal/index"
	"github.com/starford/oasis/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "oasis-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestPosts creates a temporary posts directory with a storage.Provider.
func TestPosts(t *testing.T) (string, storage.Provider) {
	t.Helper()
	postsDir := t.TempDir()
	store, err := storage.NewFS(postsDir)
	if err != nil {
		t.Fatal(err)
	}
	return postsDir, store
}

// WriteFiles writes files (slash-separated path relative to root -> content),
// creating parent directories as needed.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

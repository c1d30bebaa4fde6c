package index

import "github.com/starford/oasis/internal/models"

// PostIndex defines the interface for post indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type PostIndex interface {
	UpsertPost(p PostRow, body string) error
	DeletePost(path string) error
	GetChecksum(path string) (string, error)
	GetPost(locale, slug string) (*PostRow, string, error)
	ListPosts(locale, tag string, limit, offset int) ([]PostRow, int, error)
	Categories(locale string) ([]models.Category, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	LoadSetting(key string) ([]byte, bool, error)
	SaveSetting(key string, value []byte) error
	Close() error
}

// Verify *DB satisfies PostIndex at compile time.
var _ PostIndex = (*DB)(nil)

package index

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/starford/oasis/internal/frontmatter"
	"github.com/starford/oasis/internal/models"
	"github.com/starford/oasis/internal/storage"
)

// Sync walks the posts tree and brings the index up to date:
//   - new/changed flat posts are parsed and upserted
//   - posts removed from disk are deleted from the index
//
// Documents still in the category layout are not indexed.
func Sync(db PostIndex, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		key := filepath.ToSlash(m.Path)
		if !IsPostPath(key) {
			continue
		}
		disk[key] = struct{}{}

		if checksums[key] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", key), slog.String("error", err.Error()))
			continue
		}
		if _, err := IndexFile(db, key, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", key), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", key))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeletePost(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IsPostPath reports whether a slash-separated path relative to the posts
// root names a flat-layout post (<locale>/<slug>.md).
func IsPostPath(rel string) bool {
	if filepath.Ext(rel) != storage.PostExt {
		return false
	}
	doc, ok := models.ParseDocumentPath(rel)
	return ok && doc.Flat()
}

// IndexFile parses data and upserts it under rel. It reports false without
// touching the index when rel is not a flat-layout post.
func IndexFile(db PostIndex, rel string, data []byte) (bool, error) {
	if !IsPostPath(rel) {
		return false, nil
	}
	doc, _ := models.ParseDocumentPath(rel)
	res, err := frontmatter.Parse(data)
	if err != nil {
		return false, err
	}
	row := PostRow{
		Path:      rel,
		Locale:    doc.Locale,
		Slug:      doc.Slug,
		Title:     res.Title,
		Tag:       res.Tag,
		Date:      res.Date,
		Checksum:  storage.Checksum(data),
		UpdatedAt: time.Now(),
	}
	if row.Title == "" {
		row.Title = doc.Slug
	}
	return true, db.UpsertPost(row, res.Body)
}

package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/oasis/internal/apperr"
	"github.com/starford/oasis/internal/models"
)

// PostRow represents a row in the posts table.
type PostRow struct {
	Path      string
	Locale    string
	Slug      string
	Title     string
	Tag       string
	Date      string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Locale  string `json:"locale"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertPost inserts or replaces a post and its FTS entry within a transaction.
func (db *DB) UpsertPost(p PostRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO posts (path, locale, slug, title, tag, date, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			locale     = excluded.locale,
			slug       = excluded.slug,
			title      = excluded.title,
			tag        = excluded.tag,
			date       = excluded.date,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, p.Path, p.Locale, p.Slug, p.Title, p.Tag, p.Date, p.Checksum, body, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, p.Path, p.Title, body, p.Tag); err != nil {
		return err
	}

	return tx.Commit()
}

// DeletePost removes a post and its FTS entry.
func (db *DB) DeletePost(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM posts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete post: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a post, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM posts WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

const postColumns = `path, locale, slug, title, tag, date, checksum, updated_at`

func scanPost(sc interface{ Scan(...any) error }, extra ...any) (PostRow, error) {
	var r PostRow
	dest := append([]any{&r.Path, &r.Locale, &r.Slug, &r.Title, &r.Tag, &r.Date, &r.Checksum, &r.UpdatedAt}, extra...)
	err := sc.Scan(dest...)
	return r, err
}

// GetPost returns the row and body of the post with slug in locale.
func (db *DB) GetPost(locale, slug string) (*PostRow, string, error) {
	var body string
	row := db.conn.QueryRow(`SELECT `+postColumns+`, body FROM posts WHERE locale = ? AND slug = ?`, locale, slug)
	r, err := scanPost(row, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", apperr.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("index: get post: %w", err)
	}
	return &r, body, nil
}

// ListPosts returns posts of a locale, newest first, optionally filtered by tag,
// together with the unpaginated total.
func (db *DB) ListPosts(locale, tag string, limit, offset int) ([]PostRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := `WHERE locale = ?`
	args := []any{locale}
	if tag != "" {
		where += ` AND tag = ?`
		args = append(args, tag)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count posts: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+postColumns+` FROM posts `+where+`
		ORDER BY date DESC, path ASC
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list posts: %w", err)
	}
	defer rows.Close()

	var out []PostRow
	for rows.Next() {
		r, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// Categories returns the distinct tags used in a locale, in path order of
// their first post.
func (db *DB) Categories(locale string) ([]models.Category, error) {
	rows, err := db.conn.Query(`
		SELECT tag, count(*) AS n, min(path) AS first
		FROM posts
		WHERE locale = ? AND tag != ''
		GROUP BY tag
		ORDER BY first ASC
	`, locale)
	if err != nil {
		return nil, fmt.Errorf("index: categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var (
			c     models.Category
			first string
		)
		if err := rows.Scan(&c.Slug, &c.Count, &first); err != nil {
			return nil, err
		}
		c.Name = c.Slug
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadSetting returns the stored value for key. ok is false when unset.
func (db *DB) LoadSetting(key string) ([]byte, bool, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("index: load setting %s: %w", key, err)
	}
	return []byte(v), true, nil
}

// SaveSetting stores value under key.
func (db *DB) SaveSetting(key string, value []byte) error {
	_, err := db.conn.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), time.Now())
	if err != nil {
		return fmt.Errorf("index: save setting %s: %w", key, err)
	}
	return nil
}

// Package migrate flattens the category-based post layout
// (<locale>/<category>/<slug>.mdx) into one directory per locale
// (<locale>/<slug>.md), recording the category as the post's tag.
//
// The migration is best effort: every failure is scoped to one document or
// one category directory, logged, counted and skipped.
package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/oasis/internal/frontmatter"
	"github.com/starford/oasis/internal/models"
	"github.com/starford/oasis/internal/storage"
)

// DefaultConfigFile is the reserved per-category config file name.
const DefaultConfigFile = "category.config.js"

// DefaultSourceExts are the document extensions picked up by a migration.
var DefaultSourceExts = []string{".mdx", ".md"}

// Report counts what happened during a migration.
type Report struct {
	LocaleMissing  bool `json:"locale_missing,omitempty"`
	Migrated       int  `json:"migrated"`
	SkippedFlat    int  `json:"skipped_flat"`
	Collisions     int  `json:"collisions"`
	Failed         int  `json:"failed"`
	ConfigsRemoved int  `json:"configs_removed"`
	DirsRemoved    int  `json:"dirs_removed"`
	DirsKept       int  `json:"dirs_kept"`
}

// Add accumulates o into r.
func (r *Report) Add(o Report) {
	r.Migrated += o.Migrated
	r.SkippedFlat += o.SkippedFlat
	r.Collisions += o.Collisions
	r.Failed += o.Failed
	r.ConfigsRemoved += o.ConfigsRemoved
	r.DirsRemoved += o.DirsRemoved
	r.DirsKept += o.DirsKept
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithConfigFile sets the reserved per-category config file name.
func WithConfigFile(name string) Option {
	return func(m *Migrator) {
		if name != "" {
			m.configFile = name
		}
	}
}

// WithSourceExts sets the extensions treated as documents.
func WithSourceExts(exts ...string) Option {
	return func(m *Migrator) {
		if len(exts) > 0 {
			m.sourceExts = exts
		}
	}
}

// Migrator moves documents from the category layout to the flat layout.
type Migrator struct {
	logger     *slog.Logger
	configFile string
	sourceExts []string
}

// New creates a Migrator. A nil logger falls back to slog.Default().
func New(logger *slog.Logger, opts ...Option) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Migrator{
		logger:     logger,
		configFile: DefaultConfigFile,
		sourceExts: DefaultSourceExts,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run migrates every locale under postsDir and returns the combined report.
func (m *Migrator) Run(postsDir string, locales []string) Report {
	var total Report
	for _, locale := range locales {
		rep, err := m.MigrateLocale(filepath.Join(postsDir, locale))
		if err != nil {
			m.logger.Warn("migrate: locale failed",
				slog.String("locale", locale),
				slog.String("error", err.Error()))
		}
		m.logger.Info("migrate: locale done",
			slog.String("locale", locale),
			slog.Int("migrated", rep.Migrated),
			slog.Int("skipped_flat", rep.SkippedFlat),
			slog.Int("collisions", rep.Collisions),
			slog.Int("failed", rep.Failed),
			slog.Int("dirs_removed", rep.DirsRemoved))
		total.Add(rep)
	}
	m.logger.Info("migration complete", slog.Int("migrated", total.Migrated))
	return total
}

// MigrateLocale flattens one locale directory. A missing directory is reported
// and yields an empty report. The returned error is set only when the locale
// root itself cannot be walked; per-document problems are counted instead.
func (m *Migrator) MigrateLocale(localeRoot string) (Report, error) {
	var rep Report

	if _, err := os.Stat(localeRoot); errors.Is(err, os.ErrNotExist) {
		m.logger.Info("migrate: locale directory not found", slog.String("path", localeRoot))
		rep.LocaleMissing = true
		return rep, nil
	}
	store, err := storage.NewFS(localeRoot)
	if err != nil {
		return rep, fmt.Errorf("migrate: open locale: %w", err)
	}

	// Collect first so that writes into the root do not disturb the walk.
	var docs []string
	err = store.Walk("", func(rel string, d fs.DirEntry) error {
		if d.Name() == m.configFile || m.isDocument(rel) {
			docs = append(docs, rel)
		}
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("migrate: enumerate %s: %w", localeRoot, err)
	}

	m.logger.Info("migrate: processing locale",
		slog.String("path", localeRoot),
		slog.Int("documents", len(docs)))

	for _, rel := range docs {
		m.migrateDocument(store, localeRoot, rel, &rep)
	}

	m.cleanup(store, &rep)
	return rep, nil
}

func (m *Migrator) isDocument(rel string) bool {
	return slices.Contains(m.sourceExts, filepath.Ext(rel))
}

func (m *Migrator) migrateDocument(store storage.Provider, localeRoot, rel string, rep *Report) {
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) < 2 {
		m.logger.Info("migrate: skipping (already flat)", slog.String("path", rel))
		rep.SkippedFlat++
		return
	}

	filename := parts[len(parts)-1]
	if filename == m.configFile {
		return
	}

	doc := models.DocumentPath{
		Locale:   filepath.Base(localeRoot),
		Category: parts[0],
		Slug:     strings.TrimSuffix(filename, filepath.Ext(filename)),
	}
	log := m.logger.With(slog.String("path", rel), slog.String("category", doc.Category))

	data, err := store.Read(rel)
	if err != nil {
		log.Warn("migrate: read failed", slog.String("error", err.Error()))
		rep.Failed++
		return
	}
	content, _ := frontmatter.EnsureTag(string(data), doc.Category)

	// Flat posts always carry storage.PostExt; the index ignores anything else.
	dest := doc.Slug + storage.PostExt
	exists, err := store.Exists(dest)
	if err != nil {
		log.Warn("migrate: stat destination failed", slog.String("error", err.Error()))
		rep.Failed++
		return
	}
	if exists {
		same, err := store.SameFile(dest, rel)
		if err != nil {
			log.Warn("migrate: compare destination failed", slog.String("error", err.Error()))
			rep.Failed++
			return
		}
		if !same {
			log.Warn("migrate: file collision, skipping", slog.String("destination", dest))
			rep.Collisions++
			return
		}
	}

	// Write before delete: a crash leaves a duplicate, never a loss.
	if err := store.Write(dest, []byte(content)); err != nil {
		log.Warn("migrate: write failed", slog.String("destination", dest), slog.String("error", err.Error()))
		rep.Failed++
		return
	}
	if err := store.Delete(rel); err != nil {
		log.Warn("migrate: delete source failed", slog.String("error", err.Error()))
		rep.Failed++
		return
	}
	log.Info("migrate: migrated", slog.String("destination", dest))
	rep.Migrated++
}

// cleanup drops config files from category directories and removes the
// directories that end up empty. Nothing is removed recursively.
func (m *Migrator) cleanup(store storage.Provider, rep *Report) {
	entries, err := store.ReadDir("")
	if err != nil {
		m.logger.Warn("migrate: list category dirs failed", slog.String("error", err.Error()))
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := e.Name()
		cfg := filepath.Join(dir, m.configFile)

		exists, err := store.Exists(cfg)
		if err != nil {
			m.logger.Warn("migrate: stat config failed", slog.String("path", cfg), slog.String("error", err.Error()))
		}
		if exists {
			if err := store.Delete(cfg); err != nil {
				m.logger.Warn("migrate: remove config failed", slog.String("path", cfg), slog.String("error", err.Error()))
			} else {
				m.logger.Info("migrate: removed config", slog.String("path", cfg))
				rep.ConfigsRemoved++
			}
		}

		removed, err := store.RemoveDirIfEmpty(dir)
		switch {
		case err != nil:
			m.logger.Warn("migrate: remove dir failed", slog.String("path", dir), slog.String("error", err.Error()))
			rep.DirsKept++
		case removed:
			m.logger.Info("migrate: removed empty folder", slog.String("path", dir))
			rep.DirsRemoved++
		default:
			m.logger.Info("migrate: folder not empty, leaving in place", slog.String("path", dir))
			rep.DirsKept++
		}
	}
}

package postservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/oasis/internal/apperr"
	"github.com/starford/oasis/internal/index"
	"github.com/starford/oasis/internal/migrate"
	"github.com/starford/oasis/internal/models"
	"github.com/starford/oasis/internal/testutil"
)

func setup(t *testing.T, files map[string]string) (*Service, string) {
	t.Helper()
	root, store := testutil.TestPosts(t)
	db := testutil.TestDB(t)
	testutil.WriteFiles(t, root, files)
	if err := index.Sync(db, store, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return NewService(store, db), root
}

func TestGetPost(t *testing.T) {
	svc, _ := setup(t, map[string]string{
		"en-US/hello.md": "---\ntitle: Hello\ndate: 2024-05-01\ntag: go\n---\n\nBody text",
	})

	p, err := svc.GetPost(context.Background(), "en-US", "hello")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if p.Title != "Hello" || p.Tag != "go" || p.Date != "2024-05-01" {
		t.Errorf("post = %+v", p)
	}
	if p.Path != "en-US/hello.md" || p.Checksum == "" {
		t.Errorf("path/checksum = %q/%q", p.Path, p.Checksum)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	svc, _ := setup(t, nil)
	_, err := svc.GetPost(context.Background(), "en-US", "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPost_FileRemovedAfterIndexing(t *testing.T) {
	svc, root := setup(t, map[string]string{"en-US/gone.md": "# Gone"})
	_ = os.Remove(filepath.Join(root, "en-US", "gone.md"))

	_, err := svc.GetPost(context.Background(), "en-US", "gone")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPosts(t *testing.T) {
	svc, _ := setup(t, map[string]string{
		"en-US/a.md": "---\ntag: go\ndate: 2024-01-01\n---\n# A",
		"en-US/b.md": "---\ntag: life\ndate: 2024-02-01\n---\n# B",
		"zh-CN/c.md": "---\ntag: go\n---\n# C",
	})

	items, total, err := svc.ListPosts(context.Background(), "en-US", "", 10, 0)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("total=%d len=%d", total, len(items))
	}
	if items[0].Slug != "b" {
		t.Errorf("newest first expected, got %q", items[0].Slug)
	}

	items, total, _ = svc.ListPosts(context.Background(), "en-US", "go", 10, 0)
	if total != 1 || items[0].Slug != "a" {
		t.Errorf("tag filter: total=%d items=%+v", total, items)
	}
}

func TestListPosts_RequiresLocale(t *testing.T) {
	svc, _ := setup(t, nil)
	if _, _, err := svc.ListPosts(context.Background(), "", "", 10, 0); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCategories(t *testing.T) {
	svc, _ := setup(t, map[string]string{
		"en-US/a.md": "---\ntag: go\n---\n",
		"en-US/b.md": "---\ntag: life\n---\n",
		"en-US/c.md": "---\ntag: go\n---\n",
	})

	cats, err := svc.Categories(context.Background(), "en-US")
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	want := []models.Category{
		{Slug: "go", Name: "go", Count: 2},
		{Slug: "life", Name: "life", Count: 1},
	}
	if diff := cmp.Diff(want, cats); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	empty, err := svc.Categories(context.Background(), "zh-CN")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("empty locale: %v %v", empty, err)
	}
}

func TestSearch(t *testing.T) {
	svc, _ := setup(t, map[string]string{
		"en-US/kindle.md": "# Kindle\n\nA paperwhite reading device.",
	})

	res, err := svc.Search(context.Background(), "paperwhite", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Slug != "kindle" {
		t.Errorf("results = %+v", res)
	}

	if _, err := svc.Search(context.Background(), "", 10); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("empty query: expected ErrInvalidArgument, got %v", err)
	}
}

func TestReindex_ListsMigratedPosts(t *testing.T) {
	svc, root := setup(t, map[string]string{
		"en-US/go/hello.mdx":            "---\ntitle: Hello\n---\n\nBody",
		"en-US/go/category.config.js":   "module.exports = {}",
		"en-US/rust/ownership.markdown": "# Ownership",
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rep := migrate.New(logger, migrate.WithSourceExts(".mdx", ".markdown")).Run(root, []string{"en-US"})
	if rep.Migrated != 2 || rep.Failed != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if err := svc.Reindex(logger); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	items, total, err := svc.ListPosts(context.Background(), "en-US", "", 10, 0)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("listed %d of %d, want 2 migrated posts: %+v", len(items), total, items)
	}
	tags := map[string]string{}
	for _, it := range items {
		tags[it.Slug] = it.Tag
	}
	if diff := cmp.Diff(map[string]string{"hello": "go", "ownership": "rust"}, tags); diff != "" {
		t.Errorf("slug->tag mismatch (-want +got):\n%s", diff)
	}
}

func TestReindex_PicksUpMigratedPosts(t *testing.T) {
	svc, root := setup(t, nil)
	testutil.WriteFiles(t, root, map[string]string{"en-US/late.md": "# Late"})

	if err := svc.Reindex(slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if _, err := svc.GetPost(context.Background(), "en-US", "late"); err != nil {
		t.Errorf("post not indexed after Reindex: %v", err)
	}
}

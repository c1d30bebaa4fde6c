package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/oasis/internal/device"
	"github.com/starford/oasis/internal/index"
	"github.com/starford/oasis/internal/migrate"
	"github.com/starford/oasis/internal/postservice"
	"github.com/starford/oasis/internal/testutil"
)

func testServer(t *testing.T, files map[string]string) (*Server, string) {
	t.Helper()

	root, store := testutil.TestPosts(t)
	db := testutil.TestDB(t)
	testutil.WriteFiles(t, root, files)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := index.Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}
	svc := postservice.NewService(store, db)

	srv := New(Deps{
		Posts:    svc,
		Wireless: device.NewWirelessStore(device.DefaultWireless()),
		Migrate: func(context.Context) (migrate.Report, error) {
			rep := migrate.New(logger).Run(root, []string{"en-US"})
			return rep, svc.Reindex(logger)
		},
	})
	return srv, root
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process call helper, so dispatch to the handlers directly.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_posts":            srv.listPosts,
		"read_post":             srv.readPost,
		"search_posts":          srv.searchPosts,
		"list_categories":       srv.listCategories,
		"get_post_format":       srv.getPostFormat,
		"get_wireless_settings": srv.getWireless,
		"set_airplane_mode":     srv.setAirplane,
		"set_wifi":              srv.setWifi,
		"set_bluetooth":         srv.setBluetooth,
		"migrate_posts":         srv.migratePosts,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decodeResult[T any](t *testing.T, r *mcp.CallToolResult) T {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var v T
	if err := json.Unmarshal([]byte(resultText(r)), &v); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return v
}

func TestListAndReadPost(t *testing.T) {
	srv, _ := testServer(t, map[string]string{
		"en-US/hello.md": "---\ntitle: Hello\ntag: go\n---\n\nHi there.",
	})

	list := decodeResult[struct {
		Posts []postservice.PostListItem `json:"posts"`
		Total int                        `json:"total"`
	}](t, callTool(t, srv, "list_posts", map[string]any{"locale": "en-US"}))
	if list.Total != 1 || list.Posts[0].Slug != "hello" {
		t.Errorf("list = %+v", list)
	}

	r := callTool(t, srv, "read_post", map[string]any{"locale": "en-US", "slug": "hello"})
	if !strings.Contains(resultText(r), "Hi there.") {
		t.Errorf("read result = %q", resultText(r))
	}
}

func TestReadPostMissing(t *testing.T) {
	srv, _ := testServer(t, nil)
	r := callTool(t, srv, "read_post", map[string]any{"locale": "en-US", "slug": "nope"})
	if !r.IsError {
		t.Error("expected error for missing post")
	}
	r = callTool(t, srv, "read_post", map[string]any{"locale": "en-US"})
	if !r.IsError {
		t.Error("expected error for missing slug argument")
	}
}

func TestSearchAndCategories(t *testing.T) {
	srv, _ := testServer(t, map[string]string{
		"en-US/a.md": "---\ntag: reading\n---\nAn e-ink screen.",
		"en-US/b.md": "---\ntag: go\n---\nChannels.",
	})

	r := callTool(t, srv, "search_posts", map[string]any{"query": "e-ink"})
	if !strings.Contains(resultText(r), `"slug": "a"`) {
		t.Errorf("search result = %q", resultText(r))
	}

	r = callTool(t, srv, "list_categories", map[string]any{"locale": "en-US"})
	text := resultText(r)
	if !strings.Contains(text, `"reading"`) || !strings.Contains(text, `"go"`) {
		t.Errorf("categories = %q", text)
	}
}

func TestPostFormat(t *testing.T) {
	srv, _ := testServer(t, nil)
	r := callTool(t, srv, "get_post_format", nil)
	if !strings.Contains(resultText(r), "tag:") {
		t.Error("format contract should describe the tag key")
	}

	contents, err := srv.readPostFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != postFormatURI {
		t.Errorf("resource contents = %+v", contents[0])
	}
}

func TestWirelessTools(t *testing.T) {
	srv, _ := testServer(t, nil)

	got := decodeResult[device.WirelessSettings](t, callTool(t, srv, "set_bluetooth", map[string]any{"enabled": true}))
	if !got.BluetoothEnabled {
		t.Errorf("bluetooth = %+v", got)
	}

	got = decodeResult[device.WirelessSettings](t, callTool(t, srv, "set_airplane_mode", map[string]any{"enabled": true}))
	if !got.AirplaneMode || got.WifiEnabled || got.BluetoothEnabled {
		t.Errorf("airplane = %+v", got)
	}

	got = decodeResult[device.WirelessSettings](t, callTool(t, srv, "set_wifi", map[string]any{"enabled": true}))
	if got.AirplaneMode || !got.WifiEnabled {
		t.Errorf("wifi = %+v", got)
	}

	got = decodeResult[device.WirelessSettings](t, callTool(t, srv, "get_wireless_settings", nil))
	if got.WifiNetwork != "Home_Network" {
		t.Errorf("display fields changed: %+v", got)
	}

	if r := callTool(t, srv, "set_wifi", map[string]any{}); !r.IsError {
		t.Error("expected error without enabled argument")
	}
}

func TestMigratePostsTool(t *testing.T) {
	srv, _ := testServer(t, map[string]string{
		"en-US/notes/first.mdx": "# First",
	})

	rep := decodeResult[migrate.Report](t, callTool(t, srv, "migrate_posts", nil))
	if rep.Migrated != 1 {
		t.Errorf("report = %+v", rep)
	}

	r := callTool(t, srv, "read_post", map[string]any{"locale": "en-US", "slug": "first"})
	if r.IsError || !strings.Contains(resultText(r), `"tag": "notes"`) {
		t.Errorf("migrated post = %q", resultText(r))
	}
}

func TestMigratePostsTool_Unavailable(t *testing.T) {
	srv, _ := testServer(t, nil)
	srv.migrate = nil
	if r := callTool(t, srv, "migrate_posts", nil); !r.IsError {
		t.Error("expected error when migration is not wired")
	}
}

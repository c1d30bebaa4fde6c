// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes oasis posts and device settings to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/oasis/internal/device"
	"github.com/starford/oasis/internal/migrate"
	"github.com/starford/oasis/internal/postservice"
)

const postFormatURI = "oasis://post-format"

// Deps are the services exposed as tools. Migrate may be nil, in which case
// the migrate_posts tool reports that migration is unavailable.
type Deps struct {
	Posts    *postservice.Service
	Wireless *device.WirelessStore
	Migrate  func(ctx context.Context) (migrate.Report, error)
}

// Server wraps the MCP server with oasis tools.
type Server struct {
	mcp      *server.MCPServer
	posts    *postservice.Service
	wireless *device.WirelessStore
	migrate  func(ctx context.Context) (migrate.Report, error)
}

// New creates a new MCP server with all oasis tools registered.
func New(d Deps) *Server {
	s := &Server{posts: d.Posts, wireless: d.Wireless, migrate: d.Migrate}

	s.mcp = server.NewMCPServer(
		"Oasis",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List the posts of a locale, newest first."),
		mcp.WithString("locale", mcp.Required(), mcp.Description("Locale directory, e.g. en-US")),
		mcp.WithString("tag", mcp.Description("Optional category tag to filter by")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a post: title, tag, date and Markdown body."),
		mcp.WithString("locale", mcp.Required(), mcp.Description("Locale directory, e.g. en-US")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug (file name without .md)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post titles, tags and bodies in all locales."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the categories of a locale, derived from post tags."),
		mcp.WithString("locale", mcp.Required(), mcp.Description("Locale directory, e.g. en-US")),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the post layout and metadata format. "+
			"Read this before writing post files by hand."),
	), s.getPostFormat)

	s.mcp.AddTool(mcp.NewTool("get_wireless_settings",
		mcp.WithDescription("Get the device's airplane mode, Wi-Fi and Bluetooth state."),
	), s.getWireless)

	s.mcp.AddTool(mcp.NewTool("set_airplane_mode",
		mcp.WithDescription("Turn airplane mode on or off. Turning it on switches Wi-Fi and Bluetooth off; "+
			"turning it off leaves them off."),
		mcp.WithBoolean("enabled", mcp.Required(), mcp.Description("New airplane mode state")),
	), s.setAirplane)

	s.mcp.AddTool(mcp.NewTool("set_wifi",
		mcp.WithDescription("Turn Wi-Fi on or off. Always leaves airplane mode off."),
		mcp.WithBoolean("enabled", mcp.Required(), mcp.Description("New Wi-Fi state")),
	), s.setWifi)

	s.mcp.AddTool(mcp.NewTool("set_bluetooth",
		mcp.WithDescription("Turn Bluetooth on or off. Always leaves airplane mode off."),
		mcp.WithBoolean("enabled", mcp.Required(), mcp.Description("New Bluetooth state")),
	), s.setBluetooth)

	s.mcp.AddTool(mcp.NewTool("migrate_posts",
		mcp.WithDescription("Flatten posts/<locale>/<category>/<slug>.mdx into posts/<locale>/<slug>.md, "+
			"recording the category as the tag. Safe to run repeatedly."),
	), s.migratePosts)

	// Resource: post format contract.
	s.mcp.AddResource(
		mcp.NewResource(postFormatURI, "Post Format",
			mcp.WithResourceDescription("Flat post layout and metadata block format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	locale, err := req.RequireString("locale")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, total, err := s.posts.ListPosts(ctx, locale, req.GetString("tag", ""), req.GetInt("limit", 0), req.GetInt("offset", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"posts": items, "total": total})
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	locale, err := req.RequireString("locale")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.posts.GetPost(ctx, locale, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", locale, slug)), nil
	}
	return jsonResult(post)
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.posts.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	locale, err := req.RequireString("locale")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cats, err := s.posts.Categories(ctx, locale)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cats)
}

func (s *Server) getPostFormat(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      postFormatURI,
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}

func (s *Server) getWireless(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.wireless.Get())
}

func (s *Server) setAirplane(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.toggle(req, s.wireless.SetAirplaneMode)
}

func (s *Server) setWifi(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.toggle(req, s.wireless.SetWifiEnabled)
}

func (s *Server) setBluetooth(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.toggle(req, s.wireless.SetBluetoothEnabled)
}

func (s *Server) toggle(req mcp.CallToolRequest, set func(bool) device.WirelessSettings) (*mcp.CallToolResult, error) {
	enabled, err := req.RequireBool("enabled")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(set(enabled))
}

func (s *Server) migratePosts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.migrate == nil {
		return mcp.NewToolResultError("migration is not available"), nil
	}
	rep, err := s.migrate(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep)
}

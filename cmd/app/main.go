package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/oasis/internal"
	pkgconfig "github.com/starford/oasis/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// runMigrate works without a config file; defaults cover a checkout that
// keeps its posts in ./posts.
func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := cmd.String("posts-dir"); dir != "" {
		cfg.Posts.Dir = dir
	}
	if locales := cmd.StringSlice("locale"); len(locales) > 0 {
		cfg.Posts.Locales = locales
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid migrate options: %w", err)
	}

	// Outcomes are in the log; only setup errors fail the command.
	_, err := internal.RunMigrate(ctx, internal.WithConfig(cfg))
	return err
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol.
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func main() {
	cmd := &cli.Command{
		Name:   "oasis",
		Usage:  "Blog backend for the e-reader frame: post index, device settings and layout migration",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, SSE stream and file watcher",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Flatten posts/<locale>/<category>/<slug>.mdx into posts/<locale>/<slug>.md",
				Action: runMigrate,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "posts-dir",
						Usage:   "Posts root (overrides posts.dir)",
						Sources: cli.EnvVars("OASIS_POSTS_DIR"),
					},
					&cli.StringSliceFlag{
						Name:  "locale",
						Usage: "Locale to migrate; repeat for several (overrides posts.locales)",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/oasis/internal/api"
	"github.com/starford/oasis/internal/device"
	"github.com/starford/oasis/internal/index"
	"github.com/starford/oasis/internal/mcpserver"
	"github.com/starford/oasis/internal/migrate"
	"github.com/starford/oasis/internal/postservice"
	"github.com/starford/oasis/internal/sse"
	"github.com/starford/oasis/internal/storage"
)

// newApplication applies opts, validates the config and builds the logger.
func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	// Callers may patch a loaded config (CLI flags), so check it again here.
	if err := app.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	return app, nil
}

func (a *application) migrator() *migrate.Migrator {
	return migrate.New(a.logger,
		migrate.WithConfigFile(a.config.Migrate.ConfigFile),
		migrate.WithSourceExts(a.config.Migrate.SourceExts...),
	)
}

// migrateFunc runs one migration at a time and re-syncs the index afterwards
// so migrated posts are queryable immediately.
func (a *application) migrateFunc(svc *postservice.Service) func(context.Context) (migrate.Report, error) {
	var mu sync.Mutex
	m := a.migrator()
	return func(context.Context) (migrate.Report, error) {
		mu.Lock()
		defer mu.Unlock()
		rep := m.Run(a.config.Posts.Dir, a.config.Posts.Locales)
		if err := svc.Reindex(a.logger); err != nil {
			return rep, fmt.Errorf("reindex after migration: %w", err)
		}
		return rep, nil
	}
}

// openPosts prepares the posts directory, storage and a synced index.
func (a *application) openPosts() (storage.Provider, *index.DB, error) {
	cfg := a.config
	if err := os.MkdirAll(cfg.Posts.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create posts dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Posts.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	if dir := filepath.Dir(cfg.SQLite.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, store, a.logger); err != nil {
		a.logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return store, db, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("posts_dir", cfg.Posts.Dir),
		slog.Any("locales", cfg.Posts.Locales),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, db, err := app.openPosts()
	if err != nil {
		return err
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Device state.
	wireless := device.NewWirelessStore(device.DefaultWireless())
	wireless.Subscribe(func(v device.WirelessSettings) { broker.PublishWireless(v) })

	reader, err := device.NewReaderStore(db)
	if err != nil {
		return fmt.Errorf("init reader settings: %w", err)
	}
	reader.Subscribe(func(v device.ReaderSettings) { broker.PublishReader(v) })

	svc := postservice.NewService(store, db)
	apiRouter := api.NewRouter(api.Deps{
		Posts:    svc,
		Wireless: wireless,
		Reader:   reader,
		Browser:  device.NewBrowser(),
		Migrate:  app.migrateFunc(svc),
	}, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := db.AllChecksums(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		// A broken watcher leaves the index stale but the server usable.
		if err := index.Watch(gCtx, db, store, cfg.Posts.Dir, logger, broker.PublishPostEvent); err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close SSE streams first; Shutdown waits for active handlers.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMigrate flattens the configured locales once and logs a summary.
// Per-document problems are reported in the log, never as an error.
func RunMigrate(_ context.Context, opts ...Option) (migrate.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return migrate.Report{}, err
	}
	return app.migrator().Run(app.config.Posts.Dir, app.config.Posts.Locales), nil
}

// RunMCP serves the MCP tools on stdin/stdout. Logs must not use stdout here,
// so callers pass WithLogOutput(os.Stderr).
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	store, db, err := app.openPosts()
	if err != nil {
		return err
	}
	defer db.Close()

	svc := postservice.NewService(store, db)
	srv := mcpserver.New(mcpserver.Deps{
		Posts:    svc,
		Wireless: device.NewWirelessStore(device.DefaultWireless()),
		Migrate:  app.migrateFunc(svc),
	})

	app.logger.Info("Serving MCP on stdio", slog.String("posts_dir", app.config.Posts.Dir))
	return srv.ServeStdio()
}

// Package app wires configuration, storage, the event bus, the simulated
// feed, and the HTTP server into one runnable unit.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/njnj03/homewatch/internal/config"
	"github.com/njnj03/homewatch/internal/core"
	"github.com/njnj03/homewatch/internal/eventbus"
	"github.com/njnj03/homewatch/internal/feed"
	"github.com/njnj03/homewatch/internal/server"
	"github.com/njnj03/homewatch/internal/sqlite"
	"github.com/njnj03/homewatch/pkg/logger"
)

// ShutdownTimeout bounds a full graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// App holds the application's dependencies and configuration.
type App struct {
	Config  *config.Config
	SQLite  *sqlite.DB
	Bus     *eventbus.Bus
	Feed    *feed.Feed
	Logger  *slog.Logger
	Version string

	server *server.Server
}

// Options contains configuration needed when creating a new App instance.
type Options struct {
	ConfigPath string
	Version    string
}

// New loads configuration and constructs the App. Call Initialize before
// Start.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &App{
		Config:  cfg,
		Logger:  logger.New(cfg.Logging.Level == "debug"),
		Version: opts.Version,
	}, nil
}

// Initialize opens the database, seeds demo data on first boot, and builds
// the feed and HTTP server.
func (a *App) Initialize(ctx context.Context) error {
	var err error

	a.SQLite, err = sqlite.New(sqlite.Options{
		Config: a.Config.SQLite,
		Logger: a.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sqlite: %w", err)
	}

	if a.Config.Demo.Seed {
		if err := core.SeedDemoData(ctx, a.SQLite, a.Logger); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	a.Bus = eventbus.New()

	a.Feed = feed.New(feed.Options{
		Config: a.Config.Feed,
		DB:     a.SQLite,
		Bus:    a.Bus,
		Logger: a.Logger,
	})

	a.server = server.New(server.Options{
		Config:  a.Config,
		SQLite:  a.SQLite,
		Bus:     a.Bus,
		Logger:  a.Logger,
		Version: a.Version,
	})

	a.Feed.Start(ctx)

	return nil
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (a *App) Start() error {
	if a.server == nil {
		return fmt.Errorf("server not initialized")
	}
	a.Logger.Info("starting server",
		"host", a.Config.Server.Host,
		"port", a.Config.Server.Port,
	)
	return a.server.Start()
}

// Shutdown gracefully stops the feed, the HTTP server, and the database.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
	}

	if a.Feed != nil {
		a.Logger.Info("stopping simulated feed")
		a.Feed.Stop()
	}

	if a.server != nil {
		a.Logger.Info("shutting down HTTP server")

		serverCtx, serverCancel := context.WithTimeout(ctx, 5*time.Second)
		defer serverCancel()

		serverDone := make(chan error, 1)
		go func() {
			serverDone <- a.server.Shutdown(serverCtx)
		}()

		select {
		case err := <-serverDone:
			if err != nil {
				a.Logger.Error("error shutting down server", "error", err)
			}
		case <-serverCtx.Done():
			a.Logger.Warn("timeout shutting down HTTP server, continuing")
		}
	}

	if a.SQLite != nil {
		a.Logger.Info("closing SQLite connection")
		if err := a.SQLite.Close(); err != nil {
			a.Logger.Error("error closing SQLite", "error", err)
		}
	}

	a.Logger.Info("application shutdown complete")
	return nil
}

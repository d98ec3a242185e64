package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindwell/portal-gateway/internal/api"
	"github.com/mindwell/portal-gateway/internal/assessment"
	"github.com/mindwell/portal-gateway/internal/backend"
	"github.com/mindwell/portal-gateway/internal/cache"
	"github.com/mindwell/portal-gateway/internal/catalog"
	"github.com/mindwell/portal-gateway/internal/chat"
	"github.com/mindwell/portal-gateway/internal/cleanup"
	"github.com/mindwell/portal-gateway/internal/config"
	"github.com/mindwell/portal-gateway/internal/history"
	"github.com/mindwell/portal-gateway/internal/observability"
	"github.com/mindwell/portal-gateway/internal/services"
	"github.com/mindwell/portal-gateway/internal/storage"
	"github.com/mindwell/portal-gateway/pkg/client"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	slog.Info("starting portal-gateway",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"backend", cfg.Backend.BaseURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	defer initCancel()

	shutdownTracing, err := observability.InitTracing(initCtx, cfg.Tracing, version)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return err
	}

	phpClient := client.NewClient(cfg.Backend.BaseURL, client.WithTimeout(cfg.Backend.Timeout))

	repo, err := storage.Open(initCtx, cfg.Database)
	if err != nil {
		slog.Error("failed to open submission log", "driver", cfg.Database.Driver, "error", err)
		return err
	}
	defer repo.Close()
	slog.Info("submission log connected", "driver", cfg.Database.Driver)

	store, err := openStore(initCtx, cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		return err
	}
	defer store.Close()

	registry, closeRegistry, err := buildRegistry(cfg, phpClient, repo, store)
	if err != nil {
		slog.Error("failed to build service registry", "error", err)
		return err
	}
	defer closeRegistry()

	catalogCache := catalog.NewCache(store, phpClient)
	if err := catalogCache.Load(initCtx); err != nil {
		slog.Warn("catalog not loaded at startup, will retry on first use", "error", err)
	}

	normalizer := assessment.NewNormalizer(phpClient)
	attempts := assessment.NewManager(normalizer, catalogCache, phpClient, repo, cfg.Cleanup.AttemptTTL)

	cleaner := cleanup.NewCleaner(attempts, cfg.Cleanup.Interval)
	cleaner.Start(ctx)

	server := api.NewServer(
		api.ServerOptions{Server: cfg.Server, Chat: cfg.Chat},
		api.NewAuthMiddleware(cfg.Auth),
		api.Deps{
			Attempts:    attempts,
			Questions:   normalizer,
			Catalog:     catalogCache,
			Backend:     backend.NewSafe(phpClient),
			History:     history.NewClassifier(phpClient, time.Local),
			Messages:    phpClient,
			Sender:      chat.NewSender(phpClient),
			Submissions: repo,
			Registry:    registry,
		},
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			slog.Error("HTTP server error", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}

	slog.Info("portal-gateway stopped")
	return nil
}

// openStore returns the Redis snapshot store, or process memory when no
// Redis address is configured
func openStore(ctx context.Context, cfg config.RedisConfig) (cache.Store, error) {
	if cfg.Address == "" {
		slog.Info("catalog snapshot kept in memory")
		return cache.NewMemoryStore(), nil
	}
	return cache.NewRedisStore(ctx, cfg.Address, cfg.Password, cfg.DB, cfg.KeyPrefix)
}

// buildRegistry registers a health provider for every dependency in use
func buildRegistry(cfg *config.Config, phpClient *client.Client, repo storage.Repository, store cache.Store) (*services.Registry, func(), error) {
	registry := services.NewRegistry()
	var closers []func() error

	registry.Register("backend", services.NewPingProvider("backend", phpClient.Health))

	switch cfg.Database.Driver {
	case "postgres":
		pg, err := services.NewPostgresProvider(cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		registry.Register("postgres", pg)
		closers = append(closers, pg.Close)
	default:
		registry.Register("database", services.NewPingProvider(cfg.Database.Driver, repo.Ping))
	}

	if rs, ok := store.(*cache.RedisStore); ok {
		registry.Register("redis", services.NewRedisProvider(rs.Client()))
	}

	return registry, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Warn("failed to close health provider", "error", err)
			}
		}
	}, nil
}

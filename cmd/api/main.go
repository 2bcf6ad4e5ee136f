package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/octobees/decisionfindr/api/internal/auth"
	"github.com/octobees/decisionfindr/api/internal/config"
	"github.com/octobees/decisionfindr/api/internal/database"
	"github.com/octobees/decisionfindr/api/internal/handler"
	"github.com/octobees/decisionfindr/api/internal/janitor"
	"github.com/octobees/decisionfindr/api/internal/logging"
	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/router"
	"github.com/octobees/decisionfindr/api/internal/service"
	"github.com/octobees/decisionfindr/api/internal/storage"
	"github.com/octobees/decisionfindr/api/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("storage ready", "driver", cfg.StorageDriver)

	store := storage.NewAdapter(backend,
		storage.WithLogger(logger),
		storage.WithLegacyOwner(cfg.LegacyOwnerID),
	)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL,
		auth.WithAudience(cfg.JWTAudience),
		auth.WithIssuer(cfg.JWTIssuer),
	)

	client, err := webhook.NewClient(cfg.WebhookBaseURL, cfg.WebhookPath,
		webhook.WithTimeout(cfg.WebhookTimeout),
		webhook.WithMaxBodyBytes(int64(cfg.WebhookMaxBody)),
		webhook.WithAudience(cfg.WebhookAudience),
		webhook.WithTransformer(webhook.NewTransformer(cfg.PhoneRegion)),
		webhook.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create webhook client", "error", err)
		os.Exit(1)
	}

	opts := []service.Option{service.WithLogger(logger)}
	accumulator := service.NewAccumulator(store, opts...)
	history := service.NewHistoryService(store, cfg.HistoryLimit, opts...)
	templates := service.NewTemplateService(store, opts...)
	lists := service.NewListService(store, opts...)
	cache := service.NewResultCache(store, client, accumulator, history, service.CacheConfig{
		MaxAge: cfg.CacheMaxAge,
		Retry: service.RetryPolicy{
			MaxRetries: uint64(cfg.FetchMaxRetries),
			Base:       cfg.FetchRetryBase,
			Cap:        cfg.FetchRetryCap,
		},
	}, opts...)

	sweeper := janitor.New(cache, cfg.JanitorSchedule, logger)
	if err := sweeper.Start(context.Background()); err != nil {
		logger.Error("failed to start janitor", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Search:    handler.NewSearchHandler(cache, history, service.NewPromptService()),
		Results:   handler.NewResultsHandler(accumulator),
		History:   handler.NewHistoryHandler(history),
		Templates: handler.NewTemplateHandler(templates),
		Lists:     handler.NewListHandler(lists),
		Export:    handler.NewExportHandler(accumulator, lists, cache, history),
		Proxy:     handler.NewProxyHandler(client),
		Admin:     handler.NewAdminHandler(sweeper),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// openStore connects the configured durable backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewSQLStore(db), func() { db.Close() }, nil
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresStore(pool), pool.Close, nil
	case config.DriverRedis:
		client, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStore(client), func() { client.Close() }, nil
	case config.DriverMemory:
		return storage.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}

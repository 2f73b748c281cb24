package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meritboard/internal/cache"
	"meritboard/internal/config"
	"meritboard/internal/database"
	"meritboard/internal/events"
	"meritboard/internal/middleware"
	"meritboard/internal/repositories"
	"meritboard/internal/response"
	"meritboard/internal/router"
	"meritboard/internal/services"

	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := initLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info("Starting meritboard")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database
	dbManager, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	health := dbManager.Health(ctx)
	cancel()
	if health.Status == database.StatusUnhealthy {
		logger.Fatal("Database is not healthy",
			zap.String("status", health.Status),
			zap.Strings("errors", health.Errors),
		)
	}
	logger.Info("Database health check passed", zap.String("status", health.Status))

	// Create cache
	cacheInstance, err := cache.New(&cfg.Cache, logger)
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}
	defer cacheInstance.Close()

	// Event bus with an audit subscriber for award and reputation events
	bus := events.NewBus(256, logger)
	defer bus.Close()
	subscribeAuditHandlers(bus, logger)

	// Wire repositories and services
	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		logger.Fatal("Failed to create repositories", zap.Error(err))
	}
	serviceCollection := services.NewServiceCollection(repos, cacheInstance, bus, logger)

	authMiddleware := middleware.NewAuthMiddleware(&cfg.Auth, logger)
	responseBuilder := response.NewBuilder(logger)

	handler := router.SetupRouter(serviceCollection, dbManager, authMiddleware, responseBuilder, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Serve until interrupted, then drain in-flight requests.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	case sig := <-stop:
		logger.Info("Shutting down", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}

	logger.Info("Server stopped")
}

// subscribeAuditHandlers logs award and reputation events so moderators
// have an audit trail even without an external consumer.
func subscribeAuditHandlers(bus *events.Bus, logger *zap.Logger) {
	bus.Subscribe(events.EventTypeBadgeAwarded, events.HandlerFunc{
		ID: "audit-badge-awarded",
		Fn: func(_ context.Context, event events.Event) error {
			if e, ok := event.(*events.BadgeAwardedEvent); ok {
				logger.Info("Badge awarded",
					zap.Int64("user_id", e.UserID),
					zap.String("badge_slug", e.BadgeSlug),
					zap.String("content_type", e.ContentType),
					zap.Int64("object_id", e.ObjectID),
				)
			}
			return nil
		},
	})

	bus.Subscribe(events.EventTypeReputationChange, events.HandlerFunc{
		ID: "audit-reputation-changed",
		Fn: func(_ context.Context, event events.Event) error {
			if e, ok := event.(*events.ReputationChangedEvent); ok {
				logger.Info("Reputation changed",
					zap.Int64("user_id", e.UserID),
					zap.Int("delta", e.Delta),
					zap.Int("reputation", e.Reputation),
					zap.Int16("reputation_type", e.ReputationType),
				)
			}
			return nil
		},
	})
}

// initLogger builds a production or development logger based on GO_ENV.
func initLogger() (*zap.Logger, error) {
	if os.Getenv("GO_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

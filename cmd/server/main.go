package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/api"
	"github.com/freshfold/laundryapi/internal/cache"
	"github.com/freshfold/laundryapi/internal/config"
	"github.com/freshfold/laundryapi/internal/repository/postgres"
	"github.com/freshfold/laundryapi/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting laundry API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := postgres.RunMigrations(db, cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db, logger)

	// Tracking cache: redis when configured, otherwise a no-op
	trackingCache := cache.Noop()
	if cfg.Redis.Addr != "" {
		trackingCache = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, "laundryapi")
		logger.Info("Tracking cache enabled", zap.String("redis_addr", cfg.Redis.Addr))
	}

	// Initialize router
	router := api.NewRouter(cfg, repos, trackingCache, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Auto-complete sweep: run once on startup, then every 10 minutes
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go service.RunAutoCompleteLoop(sweepCtx, repos, logger)
	logger.Info("Auto-complete job started (runs on startup and every 10 minutes)")

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	sweepCancel()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

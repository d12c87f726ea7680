package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/api"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/config"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/logger"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/registry"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/repository"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/service"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/storage"
)

func main() {
	// Initialize logger from environment
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid configuration")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	taskRepo := repository.NewTaskRepository(db)
	inProcessRepo := repository.NewInProcessRepository(db)
	finalRepo := repository.NewFinalRepository(db)
	publisherRepo := repository.NewPublisherRepository(db)

	// Initialize listing archive storage when enabled
	var archive storage.ObjectStorage
	if cfg.Storage.Enabled {
		archive, err = storage.NewStorage(&storage.S3Config{
			Type:      storage.StorageType(cfg.Storage.Type),
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize archive storage")
		}
		if s3, ok := archive.(*storage.S3Storage); ok {
			if err := s3.EnsureBucket(context.Background()); err != nil {
				appLogger.WithError(err).Fatal("Failed to ensure archive bucket")
			}
		}
	}

	// Initialize registry client
	registryClient := registry.NewClient(&registry.Config{
		BaseURL:  cfg.Registry.BaseURL,
		Email:    cfg.Registry.Email,
		Password: cfg.Registry.Password,
		Timeout:  cfg.Registry.Timeout,
	})

	// Initialize services. The lock table is shared between the task and
	// reconcile services so task deletion waits for in-flight runs.
	locks := service.NewTaskLocks()
	taskService := service.NewTaskService(taskRepo, inProcessRepo, finalRepo, archive, locks, appLogger)
	reconcileService := service.NewReconcileService(inProcessRepo, registryClient, taskService, locks, appLogger, &service.ReconcileConfig{
		MaxRetries:     cfg.Registry.MaxRetries,
		InitialBackoff: cfg.Registry.InitialBackoff,
	})
	publisherService := service.NewPublisherService(inProcessRepo, finalRepo, publisherRepo, taskService, appLogger, cfg.Matching.MinNameScore)

	// Setup router
	router := api.SetupRouter(taskService, reconcileService, publisherService, cfg, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/config"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/logger"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/registry"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/repository"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/service"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/source/csvfile"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "guestblog-importer",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	filePath := flag.String("file", "", "Path to the CSV listing file to import")
	createdBy := flag.String("created-by", "importer", "Creator recorded on the task")
	reconcile := flag.Bool("reconcile", false, "Run reconciliation immediately after import")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *filePath == "" {
		appLogger.Fatal("-file is required")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if *reconcile {
		if err := cfg.Validate(); err != nil {
			appLogger.WithError(err).Fatal("Invalid configuration")
		}
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	taskRepo := repository.NewTaskRepository(db)
	inProcessRepo := repository.NewInProcessRepository(db)
	finalRepo := repository.NewFinalRepository(db)

	locks := service.NewTaskLocks()
	taskService := service.NewTaskService(taskRepo, inProcessRepo, finalRepo, nil, locks, appLogger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Read the listing file
	raw, err := os.ReadFile(*filePath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read listing file")
	}
	adapter := csvfile.NewAdapter(*filePath)
	listings, _, err := adapter.FetchBatch(ctx, "", 0)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to parse listing file")
	}

	task, err := taskService.CreateTask(ctx, filepath.Base(*filePath), *createdBy, listings, raw)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create task")
	}
	appLogger.WithFields(logger.Fields{
		"task_id": task.ID,
		"rows":    task.TotalRows,
	}).Info("Import completed")

	if !*reconcile {
		return
	}

	registryClient := registry.NewClient(&registry.Config{
		BaseURL:  cfg.Registry.BaseURL,
		Email:    cfg.Registry.Email,
		Password: cfg.Registry.Password,
		Timeout:  cfg.Registry.Timeout,
	})
	reconcileService := service.NewReconcileService(inProcessRepo, registryClient, taskService, locks, appLogger, &service.ReconcileConfig{
		MaxRetries:     cfg.Registry.MaxRetries,
		InitialBackoff: cfg.Registry.InitialBackoff,
	})

	result, err := reconcileService.Reconcile(ctx, task.ID)
	if err != nil {
		appLogger.WithError(err).Fatal("Reconciliation failed")
	}
	appLogger.WithFields(logger.Fields{
		"task_id":    result.TaskID,
		"domains":    result.UniqueDomains,
		"duplicates": result.Duplicates,
		"new":        result.New,
	}).Info("Reconciliation completed")
}

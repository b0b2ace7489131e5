package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expired/internal/config"
	"expired/internal/database"
	"expired/internal/handler"
	"expired/internal/importer"
	"expired/internal/model"
	"expired/internal/repository"
	"expired/internal/router"
	"expired/internal/scheduler"
	"expired/internal/service"
	"expired/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting expired API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool and schema
	pool, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize persistence context and the shared store
	productContext := repository.NewProductContext(pool, logger)
	productStore := store.NewProductStore(ctx, productContext, logger)

	// Initialize services
	policy := model.NewExpiryPolicy(cfg.Expiry.SoonDays)
	productService := service.NewProductService(productStore, policy, logger)

	// Seed an empty database from the import files
	if len(cfg.Scheduler.ImportFiles) > 0 {
		loader := importer.NewLoader(ctx, cfg.S3, logger)
		count, err := importer.NewImporter(productService, loader, logger).Seed(ctx, cfg.Scheduler.ImportFiles)
		if err != nil {
			return fmt.Errorf("failed to import product files: %w", err)
		}
		logger.Info().Int("count", count).Msg("startup import finished")
	}

	// Start periodic jobs
	if cfg.Scheduler.Enabled {
		jobs := scheduler.New(cfg.Scheduler, productService, logger)
		if err := jobs.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer jobs.Stop()
	}

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)

	// Initialize router
	mux := router.New(productHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

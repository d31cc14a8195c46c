package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"astrolab/internal/config"
	"astrolab/internal/logging"
	"astrolab/internal/services"
)

func main() {
	// 1. Load configuration.
	cfg := config.LoadConfig()

	// 2. Initialize logging.
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer func() {
		if err := logging.Shutdown(); err != nil {
			log.Printf("Error shutting down logging: %v", err)
		}
	}()

	logger := slog.Default()
	logger.Info("starting astrolab", "env", cfg.Env)

	// 3. Initialize the service manager.
	mgr := services.NewManager(cfg, logger)

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer initCancel()
	if err := mgr.Init(initCtx); err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	// 4. Run until a signal arrives.
	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- mgr.Start(runCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errChan:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	}

	// 5. Graceful shutdown.
	runCancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	mgr.Shutdown(shutdownCtx)
	logger.Info("all services stopped")
}

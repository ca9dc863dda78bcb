package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/giygas/pharma-assistant-api/catalog"
	"github.com/giygas/pharma-assistant-api/config"
	"github.com/giygas/pharma-assistant-api/handlers"
	"github.com/giygas/pharma-assistant-api/health"
	"github.com/giygas/pharma-assistant-api/llm"
	"github.com/giygas/pharma-assistant-api/logging"
	"github.com/giygas/pharma-assistant-api/orchestrator"
	"github.com/giygas/pharma-assistant-api/scheduler"
	"github.com/giygas/pharma-assistant-api/server"
	"github.com/giygas/pharma-assistant-api/validation"
)

func init() {
	// Read the env variables from the working directory
	err := godotenv.Load()
	if err != nil {
		// If failed, try loading from executable directory
		ex, err := os.Executable()
		if err != nil {
			logging.Error("Failed to get executable path", "error", err)
			os.Exit(1)
		}

		exPath := filepath.Dir(ex)

		err = os.Chdir(exPath)
		if err != nil {
			logging.Error("Failed to change directory", "error", err)
			os.Exit(1)
		}
	}
}

func main() {
	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging to console and rotating files
	logging.InitLoggerWithOptions("logs", cfg.LogRetentionWeeks, cfg.MaxLogFileSize, cfg.LogLevel)
	defer logging.Shutdown()

	validator := validation.NewDataValidator()

	// Load the medication catalog. The catalog is the source of truth for
	// interaction analysis, so a load failure is fatal.
	store, err := catalog.Load(cfg.CatalogPath, validator)
	if err != nil {
		logging.Error("Failed to load medication catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}

	// Build the generative report client. Analysis falls back to the
	// rules-based report when the model misbehaves at runtime, but an
	// unknown provider name is a configuration error.
	generator, err := llm.New(llm.FromConfig(cfg))
	if err != nil {
		logging.Error("Failed to configure report generator", "provider", cfg.LLMProvider, "error", err)
		os.Exit(1)
	}

	analyzer := orchestrator.New(store, generator, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)
	checker := health.NewHealthChecker(store, generator.Name())
	handler := handlers.NewHTTPHandler(store, analyzer, validator, checker)
	srv := server.NewServer(cfg, handler)

	// Start scheduled catalog audits and file drift monitoring
	sched := scheduler.NewScheduler(store, validator)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", "error", err)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/interactions-api/classifier"
	"github.com/giygas/interactions-api/config"
	"github.com/giygas/interactions-api/data"
	"github.com/giygas/interactions-api/handlers"
	"github.com/giygas/interactions-api/health"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/narrative"
	"github.com/giygas/interactions-api/provider"
	"github.com/giygas/interactions-api/report"
	"github.com/giygas/interactions-api/scheduler"
	"github.com/giygas/interactions-api/server"
	"github.com/giygas/interactions-api/validation"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.InitLogger(logging.Options{
		Dir:            cfg.LogDir,
		Level:          logging.GetConsoleLogLevel(cfg.Env, cfg.LogLevel),
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	catalog, err := classifier.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logging.Error("Failed to load rule catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	ruleClassifier, err := classifier.NewClassifier(catalog)
	if err != nil {
		logging.Error("Failed to build classifier", "error", err)
		os.Exit(1)
	}
	stats := ruleClassifier.Stats()
	logging.Info("Classifier ready",
		"catalog_version", stats.Version,
		"exact_pairs", stats.ExactPairs,
		"class_pairs", stats.ClassPairs)

	textProvider, err := provider.New(context.Background(), cfg)
	if err != nil {
		logging.Error("Failed to configure text generation provider", "error", err)
		os.Exit(1)
	}

	status := data.NewProviderStatus()
	status.SetServerStartTime(time.Now())

	var warmup *scheduler.Scheduler
	if !provider.IsDisabled(textProvider) {
		warmup = scheduler.NewScheduler(status, textProvider, cfg.WarmupInterval(), cfg.ProviderTimeout())
		if err := warmup.Start(); err != nil {
			logging.Warn("Continuing without provider warm-up", "error", err)
			warmup = nil
		}
	}

	synthesizer := narrative.NewSynthesizer(textProvider, cfg.ProviderTimeout())
	healthChecker := health.NewHealthChecker(ruleClassifier, textProvider, status)
	httpHandler := handlers.NewHTTPHandler(ruleClassifier, synthesizer, report.NewAssembler(),
		validation.NewValidator(), healthChecker)

	srv := server.NewServer(cfg, httpHandler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	if warmup != nil {
		warmup.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
	}
}

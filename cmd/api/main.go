package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/word-dungeon/internal/config"
	"github.com/jwebster45206/word-dungeon/internal/game"
	"github.com/jwebster45206/word-dungeon/internal/handlers"
	"github.com/jwebster45206/word-dungeon/internal/logger"
	"github.com/jwebster45206/word-dungeon/internal/middleware"
	"github.com/jwebster45206/word-dungeon/internal/report"
	"github.com/jwebster45206/word-dungeon/internal/services"
	"github.com/jwebster45206/word-dungeon/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Word Dungeon API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	llmService, err := services.NewLLMService(cfg, log)
	if err != nil {
		log.Error("Failed to create LLM service", "error", err, "provider", cfg.LLMProvider)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	generator := services.NewContentGenerator(llmService, log).
		WithRetries(cfg.LLMMaxRetries, cfg.LLMRetryBackoff).
		WithTimeout(cfg.LLMTimeout).
		WithMetrics(services.NewMetrics(registry), cfg.LLMProvider)

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	healthHandler := handlers.NewHealthHandler(store, cfg.LLMProvider, log)

	// A model that fails to initialize leaves the server up; generations
	// fail and /health reports degraded.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		healthHandler.SetModelError(err)
	}

	processor := game.NewSessionProcessor(store, generator, log)
	renderer := report.NewRenderer(cfg.ReportFontPath)
	if !renderer.UTF8() {
		log.Warn("REPORT_FONT_PATH not set, reports will use a Latin-1 font")
	}

	mux := http.NewServeMux()
	mux.Handle("/health", healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/v1/presets", handlers.NewPresetsHandler(log))

	sessionHandler := handlers.NewSessionHandler(processor, renderer, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	handler := middleware.Logger(log, mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		// Generations run inside the request; the write deadline covers retries
		WriteTimeout: cfg.LLMTimeout*time.Duration(cfg.LLMMaxRetries+1) + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Close storage connection
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}

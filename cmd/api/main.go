package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nvaneck/escape-engine/internal/config"
	"github.com/nvaneck/escape-engine/internal/engine"
	"github.com/nvaneck/escape-engine/internal/handlers"
	"github.com/nvaneck/escape-engine/internal/logger"
	"github.com/nvaneck/escape-engine/internal/middleware"
	"github.com/nvaneck/escape-engine/internal/services"
	"github.com/nvaneck/escape-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Escape Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"oracle_provider", cfg.OracleProvider,
		"model_name", cfg.ModelName)

	var oracle services.OracleService
	switch cfg.OracleProvider {
	case config.ProviderMistral:
		if cfg.MistralAPIKey == "" {
			log.Error("Mistral API key is required when using mistral provider")
			os.Exit(1)
		}
		oracle = services.NewMistralService(cfg.MistralAPIKey, cfg.ModelName)
		log.Info("Using Mistral oracle provider")
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		oracle = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic oracle provider")
	default:
		log.Error("Invalid oracle provider specified", "provider", cfg.OracleProvider, "supported", []string{"mistral", "anthropic"})
		os.Exit(1)
	}

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.SessionTTL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	eng := engine.New(store, oracle, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/v1/health", healthHandler)

	turnHandler := handlers.NewTurnHandler(eng, log)
	mux.Handle("/v1/turn", turnHandler)

	sessionHandler := handlers.NewSessionHandler(eng, log)
	mux.Handle("/v1/session", sessionHandler)
	mux.Handle("/v1/session/", sessionHandler)

	graphsHandler := handlers.NewGraphsHandler(store, log)
	mux.Handle("/v1/graphs", graphsHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

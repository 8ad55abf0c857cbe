package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"easy-website/config"
	"easy-website/internal/api"
	"easy-website/internal/app"
	"easy-website/observability"
	"easy-website/repository"
	"easy-website/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		observability.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("Invalid configuration", "error", err)
	}

	observability.InitLogger(cfg.IsProduction())
	observability.InitMetrics()

	if !cfg.HasDatabase() {
		observability.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database. The connection attempt is retried; a cold start
	// often races the database container.
	var repo *repository.Repository
	err = services.WithRetry(ctx, services.DefaultRetryConfig, func() error {
		var connectErr error
		repo, connectErr = repository.NewRepository(ctx, cfg.Database.URL)
		return connectErr
	})
	if err != nil {
		observability.Fatal("Failed to connect to database", "error", err)
	}
	defer repo.Close()

	llm := services.NewProviderClient(cfg.AI.RequestTimeout)
	core := app.New(cfg, repo, llm)
	handler := api.NewHandler(core, cfg, repo)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.RequestTimeoutSec+5) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		observability.Info("Server listening", "addr", cfg.HTTP.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	observability.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Error("Graceful shutdown failed", "error", err)
	}
}

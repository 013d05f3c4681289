// Legal debt-intake assistant server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/api"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/config"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/crm"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/enrich"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/flow"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/identity"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/intake"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/middleware"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/store"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/web"
)

const janitorInterval = 5 * time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server",
		"port", cfg.Port,
		"dev", cfg.IsDevelopment(),
		"enrichment_mode", cfg.Enrichment.Mode,
		"max_attempts", cfg.Intake.MaxAttempts)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Initialize services.
	classifier, summarizer := enrich.New(
		cfg.Enrichment.Mode,
		cfg.Enrichment.APIKey,
		cfg.Enrichment.Model,
		cfg.Enrichment.Timeout,
	)

	var exporter crm.Exporter
	if cfg.CRMExport {
		exporter = crm.LogExporter{}
		slog.Info("CRM export enabled")
	}

	machine := intake.New(cfg.Intake.MaxAttempts)
	intakeFlow := flow.New(machine, classifier, summarizer, repo, exporter)

	// Initialize handlers.
	chatHandler := api.NewChatHandler(intakeFlow, repo)
	healthHandler := api.NewHealthHandler(repo)
	wsHandler := api.NewWebSocketHandler(intakeFlow, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	allowedOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		allowedOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	healthHandler.RegisterHealth(r)
	chatHandler.RegisterRoutes(r)
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	// Embedded chat widget; API and WS routes above take precedence.
	r.Handle("/*", web.Handler())

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start idle session janitor.
	intakeFlow.StartJanitor(ctx, janitorInterval, cfg.SessionTTL)
	slog.Info("Session janitor started", "session_ttl", cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

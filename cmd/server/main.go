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

	"storefront-sync/internal/config"
	"storefront-sync/internal/handlers"
	"storefront-sync/internal/middleware"
	"storefront-sync/internal/services"
	"storefront-sync/internal/telemetry"
	"storefront-sync/internal/utils"

	"github.com/shopspring/decimal"
)

const version = "1.0.0"

func main() {
	cfg := config.LoadServerConfig()
	utils.SetupLogging(cfg.LogLevel)

	// Prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	slog.Info("Starting storefront API", "version", version)

	ctx := context.Background()
	tel, err := telemetry.InitMetrics(ctx, "storefront-api", cfg.MetricsExporter)
	if err != nil {
		slog.Error("Failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	apiTelemetry, err := telemetry.NewAPITelemetry(tel.Meter())
	if err != nil {
		slog.Error("Failed to initialize API telemetry", "error", err)
		os.Exit(1)
	}
	slog.Info("OpenTelemetry telemetry initialized", "exporter", tel.Exporter())

	seed, err := services.LoadSeed(cfg.CatalogPath)
	if err != nil {
		slog.Error("Failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	service, err := services.NewStoreService(seed, services.ServiceOptions{
		SessionTTL:             cfg.SessionTTL,
		SessionCleanupInterval: cfg.SessionCleanupInterval,
		TokenSecret:            []byte(cfg.TokenSecret),
	})
	if err != nil {
		slog.Error("Failed to initialize store service", "error", err)
		os.Exit(1)
	}
	if cfg.TokenSecret == "" {
		slog.Warn("TOKEN_SECRET not set, tokens will not survive a restart")
	}
	slog.Info("Store service initialized", "products", len(seed.Products), "accounts", len(seed.Accounts))

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: cfg.RateLimitPerMinute,
		})
		slog.Info("Rate limiting middleware enabled", "requests_per_minute", cfg.RateLimitPerMinute)
	} else {
		slog.Info("Rate limiting middleware disabled")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Service:     service,
		Version:     version,
		RateLimiter: rateLimiter,
		Telemetry:   apiTelemetry,
		Metrics:     tel.MetricsHandler(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server ready to accept connections", "address", server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	service.Stop()
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error shutting down telemetry", "error", err)
	}

	slog.Info("Server exited")
}

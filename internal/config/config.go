package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds configuration for the mock storefront API
type ServerConfig struct {
	Port                   string
	LogLevel               string
	Environment            string
	CatalogPath            string
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration
	RateLimitEnabled       bool
	RateLimitPerMinute     int
	MetricsExporter        string
	TokenSecret            string
}

// ClientConfig holds configuration for the storefront client
type ClientConfig struct {
	APIURL         string
	Email          string
	Password       string
	LogLevel       string
	HTTPTimeout    time.Duration
	MutationPolicy string
	AutoLoad       bool

	// MetricsExporter is usually "none" for the CLI; "grpc" pushes client metrics over OTLP
	MetricsExporter string
}

// loadDotEnv loads a .env file if it exists.
// Existing environment variables are not overridden.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using system environment only", "error", err)
	}
}

// LoadServerConfig loads server configuration from .env and environment variables
func LoadServerConfig() *ServerConfig {
	loadDotEnv()

	cfg := &ServerConfig{
		Port:                   getEnvWithDefault("PORT", "8080"),
		LogLevel:               getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:            getEnvWithDefault("ENVIRONMENT", "development"),
		CatalogPath:            getEnvWithDefault("CATALOG_PATH", "data/catalog.yaml"),
		SessionTTL:             getEnvAsDuration("SESSION_TTL", 12*time.Hour),
		SessionCleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", time.Minute),
		RateLimitEnabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
		RateLimitPerMinute:     getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 120),
		MetricsExporter:        getEnvWithDefault("METRICS_EXPORTER", "scraper"),
		TokenSecret:            os.Getenv("TOKEN_SECRET"),
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"log_level", cfg.LogLevel,
		"catalog_path", cfg.CatalogPath,
		"session_ttl", cfg.SessionTTL.String(),
		"rate_limit_enabled", cfg.RateLimitEnabled,
		"rate_limit_per_minute", cfg.RateLimitPerMinute,
		"metrics_exporter", cfg.MetricsExporter)

	return cfg
}

// LoadClientConfig loads client configuration from .env and environment variables
func LoadClientConfig() *ClientConfig {
	loadDotEnv()

	return &ClientConfig{
		APIURL:         strings.TrimRight(getEnvWithDefault("STOREFRONT_API_URL", "http://localhost:8080"), "/"),
		Email:          getEnvWithDefault("STOREFRONT_EMAIL", "admin@admin.com"),
		Password:       getEnvWithDefault("STOREFRONT_PASSWORD", "admin123"),
		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
		HTTPTimeout:    getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		MutationPolicy: getEnvWithDefault("MUTATION_POLICY", "last-write-wins"),
		AutoLoad:       getEnvAsBool("AUTO_LOAD", true),

		MetricsExporter: getEnvWithDefault("CLIENT_METRICS_EXPORTER", "none"),
	}
}

// IsDevelopment returns true if running in development environment
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvWithDefault gets an environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

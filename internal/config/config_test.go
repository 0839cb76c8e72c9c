package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("RATE_LIMIT_ENABLED", "")

	cfg := LoadServerConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
}

func TestLoadServerConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_REQUESTS_PER_MINUTE", "5")

	cfg := LoadServerConfig()

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 5, cfg.RateLimitPerMinute)
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "http://api.example.test/")
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")
	t.Setenv("AUTO_LOAD", "false")
	t.Setenv("MUTATION_POLICY", "serialized")
	t.Setenv("CLIENT_METRICS_EXPORTER", "")

	cfg := LoadClientConfig()

	assert.Equal(t, "http://api.example.test", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.AutoLoad)
	assert.Equal(t, "serialized", cfg.MutationPolicy)
	assert.Equal(t, "none", cfg.MetricsExporter)
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-sync/internal/models"
	"storefront-sync/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions map[string]services.Session

func (f fakeSessions) Session(token string) (services.Session, bool) {
	s, ok := f[token]
	return s, ok
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func sessionEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(s.UserID))
	})
}

func TestAuthMiddleware(t *testing.T) {
	sessions := fakeSessions{"good-token-123": {UserID: "u1"}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantError  string
	}{
		{"valid token", "Bearer good-token-123", http.StatusOK, "u1", ""},
		{"scheme is case-insensitive", "bearer good-token-123", http.StatusOK, "u1", ""},
		{"missing header", "", http.StatusUnauthorized, "", "missing bearer token"},
		{"wrong scheme", "Basic good-token-123", http.StatusUnauthorized, "", "missing bearer token"},
		{"empty token", "Bearer   ", http.StatusUnauthorized, "", "missing bearer token"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "", "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler := AuthMiddleware(sessions)(sessionEcho())
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantError != "" {
				body := decodeError(t, rr)
				assert.Equal(t, tt.wantError, body.Error)
				assert.Equal(t, "unauthorized", body.Code)
				return
			}
			assert.Equal(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	sessions := fakeSessions{
		"admin-token-xyz": {UserID: "a", Admin: true},
		"user-token-xyz1": {UserID: "u"},
	}
	handler := AuthMiddleware(sessions)(RequireAdmin(ok))

	for token, want := range map[string]int{
		"admin-token-xyz": http.StatusNoContent,
		"user-token-xyz1": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodDelete, "/products/1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, want, rr.Code, token)
	}
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("short"))
	assert.Equal(t, "abcd****wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
}

func TestRateLimiter_IsAllowed(t *testing.T) {
	// Arrange
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, RequestsPerMinute: 2})
	defer rl.Stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	// Act & Assert
	allowed, info := rl.IsAllowed("a")
	assert.True(t, allowed)
	assert.Equal(t, 1, info.Remaining)

	allowed, _ = rl.IsAllowed("a")
	assert.True(t, allowed)

	allowed, info = rl.IsAllowed("a")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)

	allowed, _ = rl.IsAllowed("b")
	assert.True(t, allowed, "keys are limited independently")

	now = now.Add(time.Minute + time.Second)
	allowed, _ = rl.IsAllowed("a")
	assert.True(t, allowed, "window resets")
}

func TestRateLimiter_Stats(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, RequestsPerMinute: 1})
	defer rl.Stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	// a uses its whole quota, b goes over it
	rl.IsAllowed("a")
	rl.IsAllowed("b")
	allowed, _ := rl.IsAllowed("b")
	require.False(t, allowed)

	stats := rl.Stats()
	assert.Equal(t, 2, stats.ActiveClients)
	assert.Equal(t, 1, stats.LimitedClients)
	assert.Equal(t, "1m0s", stats.Window)

	rl.Reset()
	assert.Zero(t, rl.Stats().ActiveClients)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: false, RequestsPerMinute: 1})
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := rl.IsAllowed("a")
		assert.True(t, allowed)
		assert.Equal(t, -1, info.Limit)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	// Arrange
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, RequestsPerMinute: 1})
	defer rl.Stop()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RateLimitMiddleware(rl)(next)

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer tok-1234567")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	// Act
	first := send("/cart")
	second := send("/cart")
	health := send("/health")

	// Assert
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	body := decodeError(t, second)
	assert.Equal(t, "rate limited", body.Error)
	assert.Equal(t, "rate_limit_exceeded", body.Code)

	assert.Equal(t, http.StatusOK, health.Code)

	rl.Reset()
	assert.Equal(t, http.StatusOK, send("/cart").Code)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", getClientIP(req))
}

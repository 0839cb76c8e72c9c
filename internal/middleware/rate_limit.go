package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront-sync/internal/models"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Window            time.Duration
}

type rateLimitEntry struct {
	count     int
	resetTime time.Time

	// rejected is set once a request in this window was refused
	rejected bool
}

// RateLimitInfo is reported in the X-RateLimit-* headers
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetTime time.Time
}

// RateLimiter is a fixed-window counter per client key
type RateLimiter struct {
	config  RateLimitConfig
	entries map[string]*rateLimitEntry
	mutex   sync.Mutex
	now     func() time.Time

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.RequestsPerMinute <= 0 {
		slog.Warn("Invalid rate limit requests per minute, using default",
			"configured", config.RequestsPerMinute, "default", 120)
		config.RequestsPerMinute = 120
	}

	rl := &RateLimiter{
		config:        config,
		entries:       make(map[string]*rateLimitEntry),
		now:           time.Now,
		cleanupTicker: time.NewTicker(config.Window),
		stopCleanup:   make(chan struct{}),
	}
	go rl.cleanupExpiredEntries()

	slog.Info("Rate limiter initialized",
		"enabled", config.Enabled,
		"requests_per_minute", config.RequestsPerMinute,
		"window", config.Window.String())
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanupTicker.Stop()
		close(rl.stopCleanup)
	})
}

func (rl *RateLimiter) cleanupExpiredEntries() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.mutex.Lock()
			now := rl.now()
			for key, entry := range rl.entries {
				if now.After(entry.resetTime) {
					delete(rl.entries, key)
				}
			}
			rl.mutex.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// IsAllowed counts one request for key and reports whether it fits the window
func (rl *RateLimiter) IsAllowed(key string) (bool, RateLimitInfo) {
	if !rl.config.Enabled {
		return true, RateLimitInfo{Limit: -1, Remaining: -1}
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	entry, ok := rl.entries[key]
	if !ok || now.After(entry.resetTime) {
		entry = &rateLimitEntry{resetTime: now.Add(rl.config.Window)}
		rl.entries[key] = entry
	}

	limit := rl.config.RequestsPerMinute
	info := RateLimitInfo{Limit: limit, ResetTime: entry.resetTime}
	if entry.count >= limit {
		entry.rejected = true
		return false, info
	}

	entry.count++
	info.Remaining = limit - entry.count
	return true, info
}

// RateLimitStats is the limiter state reported to admins
type RateLimitStats struct {
	Enabled           bool   `json:"enabled"`
	RequestsPerMinute int    `json:"requestsPerMinute"`
	Window            string `json:"window"`
	ActiveClients     int    `json:"activeClients"`
	LimitedClients    int    `json:"limitedClients"`
}

// Stats counts the clients with a live window, and those that had a request
// refused in it. A client that used its whole quota without going over is not limited.
func (rl *RateLimiter) Stats() RateLimitStats {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	stats := RateLimitStats{
		Enabled:           rl.config.Enabled,
		RequestsPerMinute: rl.config.RequestsPerMinute,
		Window:            rl.config.Window.String(),
	}
	now := rl.now()
	for _, entry := range rl.entries {
		if now.After(entry.resetTime) {
			continue
		}
		stats.ActiveClients++
		if entry.rejected {
			stats.LimitedClients++
		}
	}
	return stats
}

// Reset clears every counter
func (rl *RateLimiter) Reset() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.entries = make(map[string]*rateLimitEntry)
}

// RateLimitMiddleware limits each client, keyed by bearer token when present
// and by IP otherwise. /health is never limited.
func RateLimitMiddleware(rateLimiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			key := clientKey(r)
			allowed, info := rateLimiter.IsAllowed(key)
			setRateLimitHeaders(w, info)

			if !allowed {
				slog.Warn("Rate limit exceeded",
					"client_ip", getClientIP(r),
					"path", r.URL.Path,
					"method", r.Method,
					"limit", info.Limit,
					"reset_time", info.ResetTime.Format(time.RFC3339))
				writeRateLimitErrorResponse(w, info, rateLimiter.now())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if token, ok := bearerToken(r); ok {
		return "token:" + token
	}
	return "ip:" + getClientIP(r)
}

// getClientIP prefers proxy headers over RemoteAddr
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setRateLimitHeaders(w http.ResponseWriter, info RateLimitInfo) {
	if info.Limit < 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	if !info.ResetTime.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func writeRateLimitErrorResponse(w http.ResponseWriter, info RateLimitInfo, now time.Time) {
	retryAfter := int(info.ResetTime.Sub(now).Seconds() + 0.5)
	if retryAfter < 0 {
		retryAfter = 0
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	writeErrorResponse(w, http.StatusTooManyRequests, "rate_limit_exceeded", "rate limited", []models.ErrorDetail{
		{
			Field: "rate_limit",
			Issue: fmt.Sprintf("Exceeded %d requests per minute", info.Limit),
		},
		{
			Field: "retry_after",
			Issue: fmt.Sprintf("Retry after %d seconds", retryAfter),
		},
	})
}

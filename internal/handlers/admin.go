package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"storefront-sync/internal/middleware"
	"storefront-sync/internal/services"
)

// AdminHandler exposes operational state to admins
type AdminHandler struct {
	service     *services.StoreService
	rateLimiter *middleware.RateLimiter
}

func NewAdminHandler(service *services.StoreService, rateLimiter *middleware.RateLimiter) *AdminHandler {
	return &AdminHandler{service: service, rateLimiter: rateLimiter}
}

type adminStatusResponse struct {
	ActiveSessions int                        `json:"activeSessions"`
	Products       int                        `json:"products"`
	RateLimit      *middleware.RateLimitStats `json:"rateLimit,omitempty"`
}

// Status handles GET /admin/status
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := adminStatusResponse{
		ActiveSessions: h.service.ActiveSessions(),
		Products:       len(h.service.ListProducts()),
	}
	if h.rateLimiter != nil {
		stats := h.rateLimiter.Stats()
		resp.RateLimit = &stats
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// ResetRateLimits handles POST /admin/rate-limit/reset
func (h *AdminHandler) ResetRateLimits(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "rate_limiter_unavailable", "rate limiter not enabled", nil)
		return
	}

	h.rateLimiter.Reset()
	slog.Info("Rate limits reset", "remote_addr", r.RemoteAddr)
	writeJSONResponse(w, http.StatusOK, map[string]string{
		"message":   "rate limits reset",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

package handlers

import (
	"net/http"

	"storefront-sync/internal/models"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	version string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Service: "storefront-api",
		Version: h.version,
	})
}

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"storefront-sync/internal/models"
	"storefront-sync/internal/services"
)

// AuthHandler issues bearer tokens
type AuthHandler struct {
	service *services.StoreService
}

func NewAuthHandler(service *services.StoreService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login handles POST /token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "email and password are required", nil)
		return
	}

	session, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.Info("Token issued", "user_id", session.UserID, "remote_addr", r.RemoteAddr)
	writeJSONResponse(w, http.StatusOK, models.LoginResponse{Token: session.Token})
}

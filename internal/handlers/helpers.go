package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"storefront-sync/internal/middleware"
	"storefront-sync/internal/models"
	"storefront-sync/internal/services"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes {"error": message, "code": code}
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string, details []models.ErrorDetail) {
	writeJSONResponse(w, statusCode, models.ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// writeServiceError maps a service error to its HTTP status
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrItemNotInCart):
		writeErrorResponse(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidProduct),
		errors.Is(err, services.ErrEmptyUpdate):
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	default:
		slog.Error("Unhandled service error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

// decodeJSON reads a JSON body into v, answering 400 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Warn("Invalid JSON in request", "path", r.URL.Path, "error", err, "remote_addr", r.RemoteAddr)
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return false
	}
	return true
}

// pathID parses a positive integer path variable, answering 400 itself on failure
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid %s", name), []models.ErrorDetail{
			{Field: name, Issue: fmt.Sprintf("%q is not a positive integer", raw)},
		})
		return 0, false
	}
	return id, true
}

// ownerID is the caller's user id; routes using it sit behind AuthMiddleware
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "missing session", nil)
		return "", false
	}
	return session.UserID, true
}

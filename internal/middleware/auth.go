package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"storefront-sync/internal/models"
	"storefront-sync/internal/services"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionStore resolves bearer tokens to sessions
type SessionStore interface {
	Session(token string) (services.Session, bool)
}

// WithSession stores the caller's session in ctx
func WithSession(ctx context.Context, s services.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the session set by AuthMiddleware
func SessionFromContext(ctx context.Context) (services.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(services.Session)
	return s, ok
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header
func AuthMiddleware(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				slog.Warn("Authentication failed: missing bearer token", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
				return
			}

			session, ok := store.Session(token)
			if !ok {
				slog.Warn("Authentication failed: unknown or expired token", "remote_addr", r.RemoteAddr, "token", maskToken(token))
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", nil)
				return
			}

			slog.Debug("Authentication successful", "user_id", session.UserID, "token", maskToken(token))
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireAdmin rejects sessions without admin rights. It must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok || !session.Admin {
			slog.Warn("Admin access denied", "remote_addr", r.RemoteAddr, "path", r.URL.Path, "user_id", session.UserID)
			writeErrorResponse(w, http.StatusForbidden, "forbidden", "admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// maskToken keeps only the first and last four characters for logs
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string, details []models.ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

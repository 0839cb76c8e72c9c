package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront-sync/internal/contact"
	"storefront-sync/internal/models"
)

// ContactHandler accepts contact form submissions. Messages are logged, not stored.
type ContactHandler struct{}

func NewContactHandler() *ContactHandler {
	return &ContactHandler{}
}

// Submit handles POST /contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form contact.Form
	if !decodeJSON(w, r, &form) {
		return
	}

	if err := form.Validate(); err != nil {
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			writeErrorResponse(w, http.StatusBadRequest, "validation_failed", verr.Message, []models.ErrorDetail{verr.Detail()})
			return
		}
		writeServiceError(w, r, err)
		return
	}

	slog.Info("Contact message received", "email", form.Email, "length", len(form.Message))
	writeJSONResponse(w, http.StatusAccepted, map[string]string{"status": "received"})
}

// Package contact validates the storefront contact form.
package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"storefront-sync/internal/models"
)

// MaxMessageLength is counted in characters after trimming
const MaxMessageLength = 500

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form is what a visitor submits
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ValidationError names the first offending field. Error returns the message
// shown to the visitor.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Detail converts the error to the API error detail shape
func (e *ValidationError) Detail() models.ErrorDetail {
	return models.ErrorDetail{Field: e.Field, Issue: e.Message}
}

// Validate checks fields in form order and reports the first failure
func (f Form) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	if strings.TrimSpace(f.Email) == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if !emailPattern.MatchString(f.Email) {
		return &ValidationError{Field: "email", Message: "Invalid email format"}
	}

	msg := strings.TrimSpace(f.Message)
	if msg == "" {
		return &ValidationError{Field: "message", Message: "Message is required"}
	}
	if utf8.RuneCountInString(msg) > MaxMessageLength {
		return &ValidationError{Field: "message", Message: "Message must be under 500 characters"}
	}
	return nil
}

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmptyResponse is a 2xx answer without the resource the call must return
	ErrEmptyResponse = errors.New("empty response body")
)

// ErrorKind classifies a failed call by where it failed
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindServer is a non-2xx response whose body carried a message
	KindServer
	// KindHTTPStatus is a non-2xx response without a usable message
	KindHTTPStatus
	// KindTransport is a failure before any response arrived
	KindTransport
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindServer:
		return "server"
	case KindHTTPStatus:
		return "http_status"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// APIError is returned for every non-2xx response
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// Is lets errors.Is match status-based sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// TransportError wraps a failure that happened before a response was received
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// newAPIError builds an APIError from a response body. The message is taken
// from the "error" field, then the "message" field.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: body}

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Code    string          `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	apiErr.Code = payload.Code
	var msg string
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &msg) == nil {
		apiErr.Message = strings.TrimSpace(msg)
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(payload.Message)
	}
	return apiErr
}

// Classify reports which kind of failure err is
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return KindServer
		}
		return KindHTTPStatus
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return KindTransport
	}

	return KindUnknown
}

// Describe turns err into the message shown to the user. A server-provided
// message wins, then the generic status message, then fallback.
func Describe(err error, fallback string) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindServer:
		var apiErr *APIError
		errors.As(err, &apiErr)
		return apiErr.Message
	case KindHTTPStatus:
		var apiErr *APIError
		errors.As(err, &apiErr)
		return apiErr.Error()
	default:
		return fallback
	}
}

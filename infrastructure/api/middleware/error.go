package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/simdex/simdex/application/service"
	"github.com/simdex/simdex/domain/account"
	"github.com/simdex/simdex/domain/similarity"
	"github.com/simdex/simdex/internal/auth"
	"github.com/simdex/simdex/internal/log"
)

// APIError represents a single error in an error response.
type APIError struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	ID     string `json:"id,omitempty"`
}

// ErrorResponse wraps errors in the response envelope.
type ErrorResponse struct {
	Errors []APIError `json:"errors"`
}

// WriteError maps a service error to its HTTP status and writes the error body.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *log.Logger) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"
	detail := err.Error()

	switch {
	case errors.Is(err, service.ErrNoCredentials),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired):
		status = http.StatusUnauthorized
		title = "Authentication Failed"
	case errors.Is(err, service.ErrUnknownAPIKey),
		errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		title = "Authorization Failed"
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		title = "Validation Error"
	case errors.Is(err, account.ErrAccountExists):
		status = http.StatusConflict
		title = "Conflict"
	case errors.Is(err, similarity.ErrUnknownEntity),
		errors.Is(err, account.ErrAccountNotFound):
		status = http.StatusNotFound
		title = "Not Found"
	case errors.Is(err, service.ErrRateLimited):
		status = http.StatusTooManyRequests
		title = "Rate Limit Exceeded"
	}

	correlationID := log.CorrelationID(r.Context())

	if logger != nil {
		logger.Error("request error",
			"correlation_id", correlationID,
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	resp := ErrorResponse{
		Errors: []APIError{
			{
				Status: http.StatusText(status),
				Title:  title,
				Detail: detail,
				ID:     correlationID,
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

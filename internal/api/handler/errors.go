package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/factionboard/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest       = apierr.CodeInvalidRequest
	CodeDuplicatePlayer      = apierr.CodeDuplicatePlayer
	CodeUnauthorized         = apierr.CodeUnauthorized
	CodeRegistrationNotFound = apierr.CodeRegistrationNotFound
	CodeInvalidCredentials   = apierr.CodeInvalidCredentials
	CodeAdminUnauthorized    = apierr.CodeAdminUnauthorized
	CodeInternalError        = apierr.CodeInternalError
)

// WriteError writes an error response. Errors that map to a 500 are logged
// with their cause, which is never sent to the caller.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

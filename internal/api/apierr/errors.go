package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeDuplicatePlayer      = "DUPLICATE_PLAYER"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeRegistrationNotFound = "REGISTRATION_NOT_FOUND"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeAdminUnauthorized    = "ADMIN_UNAUTHORIZED"
	CodeAdminDisabled        = "ADMIN_DISABLED"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, ve.Error()}}
	case errors.Is(err, model.ErrInvalidFaction):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Unknown faction"}}
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Invalid registration data"}}
	case errors.Is(err, model.ErrDuplicatePlayer):
		return &httpError{http.StatusConflict, APIError{CodeDuplicatePlayer, "Player name is already registered"}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusForbidden, APIError{CodeUnauthorized, "Owner secret is missing or does not match"}}
	case errors.Is(err, model.ErrRegistrationNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRegistrationNotFound, "Registration not found"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid admin password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeAdminUnauthorized, "Invalid or expired admin session"}}
	case errors.Is(err, auth.ErrAdminDisabled):
		return &httpError{http.StatusUnauthorized, APIError{CodeAdminDisabled, "Admin login is not configured"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewAdminUnauthorizedError creates the error for a missing admin token
func NewAdminUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeAdminUnauthorized, "Admin authentication required"}}
}

// NewNotFoundError creates the error for an unknown route
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

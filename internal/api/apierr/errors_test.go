package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/services/auth"
)

func TestToHTTPError(t *testing.T) {
	_, validationErr := model.ParseFaction("imperio")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", model.CreateInput{Faction: model.FactionEfemeros}.Validate(), http.StatusBadRequest, CodeInvalidRequest},
		{"invalid faction", validationErr, http.StatusBadRequest, CodeInvalidRequest},
		{"duplicate", fmt.Errorf("create registration: %w", model.ErrDuplicatePlayer), http.StatusConflict, CodeDuplicatePlayer},
		{"unauthorized", model.ErrUnauthorized, http.StatusForbidden, CodeUnauthorized},
		{"not found", fmt.Errorf("get: %w", model.ErrRegistrationNotFound), http.StatusNotFound, CodeRegistrationNotFound},
		{"bad admin password", auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{"bad admin session", auth.ErrInvalidSession, http.StatusUnauthorized, CodeAdminUnauthorized},
		{"admin disabled", auth.ErrAdminDisabled, http.StatusUnauthorized, CodeAdminDisabled},
		{"explicit", NewInvalidRequestError("bad body"), http.StatusBadRequest, CodeInvalidRequest},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := toHTTPError(tt.err)
			assert.Equal(t, tt.status, he.status)
			assert.Equal(t, tt.code, he.apiError.Code)
			assert.Equal(t, tt.status, Status(tt.err))
		})
	}
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("open /var/lib/registrations.json: permission denied"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotContains(t, rr.Body.String(), "permission denied")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, CodeInternalError, resp.Error.Code)
}

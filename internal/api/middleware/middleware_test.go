package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/factionboard/internal/dependencies/mocks"
	"github.com/mcoot/factionboard/internal/metrics"
	"github.com/mcoot/factionboard/internal/services/auth"
	nop "github.com/mcoot/factionboard/internal/testutil"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	svc, err := auth.New(mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)), auth.Config{
		PasswordHash:    string(hash),
		TokenSecret:     []byte("middleware-test"),
		SessionDuration: time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func TestAdminAuth(t *testing.T) {
	svc := newAuthService(t)
	session, err := svc.Login("pw")
	require.NoError(t, err)

	var seen *auth.Session
	h := AdminAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSession(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + session.Token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + session.Token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}

	require.NotNil(t, seen)
	assert.True(t, session.ExpiresAt.Equal(seen.ExpiresAt))
}

func TestRecoveryWritesErrorEnvelope(t *testing.T) {
	h := Recovery(nop.NopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, rr.Body.String())
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	m := metrics.New()

	r := mux.NewRouter()
	r.Use(Metrics(m))
	r.HandleFunc("/api/registrations/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/registrations/"+id, nil))
	}

	count, err := testutil.GatherAndCount(m.Registry(), "factionboard_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

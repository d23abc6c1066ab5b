package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	m := New()

	m.Mutation("create")
	m.Mutation("create")
	m.AuthFailure("delete")
	m.DuplicatePlayer()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authFailures.WithLabelValues("delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.duplicates))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Mutation("create")
		m.AuthFailure("update")
		m.DuplicatePlayer()
		m.ObserveRequest(http.MethodGet, "/api/registrations", http.StatusOK, time.Millisecond)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/registrations", http.StatusOK, 5*time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "factionboard_http_requests_total")
}

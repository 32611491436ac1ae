package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAndHandler(t *testing.T) {
	m := New("unit")

	m.Requests.WithLabelValues(OutcomeCacheHit).Inc()
	m.Requests.WithLabelValues(OutcomeCacheHit).Inc()
	m.Requests.WithLabelValues(OutcomeEmpty).Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues(OutcomeCacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(OutcomeEmpty)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `unit_api_requests_total{outcome="cache_hit"} 2`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("dup")
		New("dup")
	})
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncRequest(OutcomeError)
		m.ObserveHeadlines(3)
		m.ObserveProviderCall("NewsAPI", "ok", time.Second)
	})
}

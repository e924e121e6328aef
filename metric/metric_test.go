package metric

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("create", 201, 5*time.Millisecond)
	m.ObserveRequest("create", 201, 7*time.Millisecond)
	m.ObserveRequest("fetch", 404, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("create", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("fetch", "404")))
}

func TestObserveStorageError(t *testing.T) {
	m := NewMetrics()

	m.ObserveStorageError("put", "unavailable")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.StorageErrors.WithLabelValues("put", "unavailable")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.StorageErrors.WithLabelValues("get", "unavailable")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("create", 201, time.Millisecond)
		m.ObserveStorageError("put", "other")
		m.ObserveRateLimited()
	})
}

func TestRegistryHandler(t *testing.T) {
	registry := NewRegistry()
	registry.Metrics.ObserveRequest("create", 201, time.Millisecond)

	rec := httptest.NewRecorder()
	registry.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "itemstore_http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

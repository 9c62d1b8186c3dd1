package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics("")

	m.ObserveRate("primary", 83.2)
	m.ObserveRate("static", 84.5)
	m.ObserveRateCacheHit()
	m.ObserveRateCacheHit()
	m.ObservePrediction("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateResolutions.WithLabelValues("primary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateResolutions.WithLabelValues("static")))
	assert.Equal(t, 84.5, testutil.ToFloat64(m.CurrentRate))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RateCacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictionsTotal.WithLabelValues("ok")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRate("primary", 1)
		m.ObserveRateCacheHit()
		m.ObserveRateCacheError()
		m.ObservePrediction("model")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("test")
	m.ObservePrediction("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_predictions_total{outcome="ok"} 1`)
}

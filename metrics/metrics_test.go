package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Label values are unique per test: counters on the default registry
// accumulate across the whole test binary.

func TestCountersAccumulate(t *testing.T) {
	TicksTotal.WithLabelValues("metrics-test-ticks").Inc()
	TicksTotal.WithLabelValues("metrics-test-ticks").Inc()
	assert.Equal(t, 2.0, testutil.ToFloat64(TicksTotal.WithLabelValues("metrics-test-ticks")))

	OrdersPlaced.WithLabelValues("metrics-test-placed", "buy").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(OrdersPlaced.WithLabelValues("metrics-test-placed", "buy")))
	assert.Equal(t, 0.0, testutil.ToFloat64(OrdersPlaced.WithLabelValues("metrics-test-placed", "sell")))
}

func TestGaugesTrackLastValue(t *testing.T) {
	MidPrice.WithLabelValues("metrics-test-mid").Set(0.42)
	MidPrice.WithLabelValues("metrics-test-mid").Set(0.58)
	assert.Equal(t, 0.58, testutil.ToFloat64(MidPrice.WithLabelValues("metrics-test-mid")))

	PositionNet.WithLabelValues("metrics-test-pos").Set(-7)
	assert.Equal(t, -7.0, testutil.ToFloat64(PositionNet.WithLabelValues("metrics-test-pos")))
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	TickErrors.WithLabelValues("metrics-test-handler").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "mm_tick_errors_total")
	assert.Contains(t, body, `strategy="metrics-test-handler"`)
}

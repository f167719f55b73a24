package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBackendRequestsCounter(t *testing.T) {
	c := BackendRequests.WithLabelValues("/home", "ok")
	before := testutil.ToFloat64(c)

	c.Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestCircuitBreakerStateGauge(t *testing.T) {
	g := CircuitBreakerState.WithLabelValues("test-breaker")
	g.Set(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(g))
}

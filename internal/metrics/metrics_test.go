package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	m.RequestCompleted("Login", 0)
	m.SessionAttached()
	m.EventDelivered("lock")
	m.CallbackSuppressed()
	m.Frame("in", "request", 10)

	assert.Nil(t, m.Registry())
}

func TestCounters(t *testing.T) {
	m := New("rtm")

	m.RequestCompleted("Login", 0)
	m.RequestCompleted("Login", 0)
	m.RequestCompleted("AcquireLock", -14007)
	m.SessionAttached()
	m.SessionAttached()
	m.SessionDetached()

	assert.EqualValues(t, 2, testutil.ToFloat64(m.requests.WithLabelValues("Login", "0")))
	assert.EqualValues(t, 1, testutil.ToFloat64(m.requests.WithLabelValues("AcquireLock", "-14007")))
	assert.EqualValues(t, 1, testutil.ToFloat64(m.sessions))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "rtm_engine_requests_total")
}

package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the harness collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	sessions   prometheus.Gauge
	events     *prometheus.CounterVec
	locksHeld  prometheus.Gauge
	submitted  *prometheus.CounterVec
	suppressed prometheus.Counter
	frames     *prometheus.CounterVec
	frameBytes *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "requests_total",
			Help:      "Requests completed by the engine, by operation and result code.",
		}, []string{"op", "code"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "sessions",
			Help:      "Sessions currently attached to the engine.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "events_total",
			Help:      "Events delivered to sessions, by kind.",
		}, []string{"kind"}),
		locksHeld: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "locks_held",
			Help:      "Locks currently held.",
		}),
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "submitted_total",
			Help:      "Requests submitted by clients, by operation.",
		}, []string{"op"}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "suppressed_callbacks_total",
			Help:      "Callbacks dropped because their handle was released.",
		}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "frames_total",
			Help:      "Websocket frames, by direction and kind.",
		}, []string{"direction", "kind"}),
		frameBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "frame_bytes_total",
			Help:      "Websocket payload bytes, by direction.",
		}, []string{"direction"}),
	}

	registry.MustRegister(m.requests, m.sessions, m.events, m.locksHeld, m.submitted, m.suppressed,
		m.frames, m.frameBytes, collectors.NewGoCollector())

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RequestCompleted(op string, code int) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(op, strconv.Itoa(code)).Inc()
}

func (m *Metrics) SessionAttached() {
	if m == nil {
		return
	}

	m.sessions.Inc()
}

func (m *Metrics) SessionDetached() {
	if m == nil {
		return
	}

	m.sessions.Dec()
}

func (m *Metrics) EventDelivered(kind string) {
	if m == nil {
		return
	}

	m.events.WithLabelValues(kind).Inc()
}

func (m *Metrics) LockAcquired() {
	if m == nil {
		return
	}

	m.locksHeld.Inc()
}

func (m *Metrics) LockFreed() {
	if m == nil {
		return
	}

	m.locksHeld.Dec()
}

func (m *Metrics) RequestSubmitted(op string) {
	if m == nil {
		return
	}

	m.submitted.WithLabelValues(op).Inc()
}

func (m *Metrics) CallbackSuppressed() {
	if m == nil {
		return
	}

	m.suppressed.Inc()
}

func (m *Metrics) Frame(direction, kind string, size int) {
	if m == nil {
		return
	}

	m.frames.WithLabelValues(direction, kind).Inc()
	m.frameBytes.WithLabelValues(direction).Add(float64(size))
}

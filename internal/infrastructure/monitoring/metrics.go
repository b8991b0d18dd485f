package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Compiler metrics
	CompilesTotal   *prometheus.CounterVec
	CompileDuration prometheus.Histogram
	Diagnostics     *prometheus.CounterVec
	Maneuvers       prometheus.Histogram

	// Traffic metrics
	TrafficAccepted  prometheus.Counter
	TrafficRejected  prometheus.Counter
	PlacementErrors  prometheus.Counter
	PlacementLatency prometheus.Histogram
	BreakerOpen      prometheus.Gauge

	startTime time.Time
	snapshot  Snapshot
	mu        sync.RWMutex
}

// Snapshot holds current totals for the JSON health endpoint.
type Snapshot struct {
	Compiles       int64   `json:"compiles"`
	Failures       int64   `json:"failures"`
	Diagnostics    int64   `json:"diagnostics"`
	TrafficVehicle int64   `json:"traffic_vehicles"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// NewMetrics registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scenarioforge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scenarioforge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scenarioforge_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scenarioforge_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		CompilesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scenarioforge_compiles_total",
				Help: "Total number of blueprint compilations",
			},
			[]string{"map", "outcome"},
		),
		CompileDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scenarioforge_compile_duration_seconds",
				Help:    "Blueprint compilation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		Diagnostics: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scenarioforge_diagnostics_total",
				Help: "Recoverable problems reported during compilation",
			},
			[]string{"kind"},
		),
		Maneuvers: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scenarioforge_maneuvers_per_scenario",
				Help:    "Number of maneuvers in each compiled scenario",
				Buckets: prometheus.LinearBuckets(0, 2, 10),
			},
		),

		TrafficAccepted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "scenarioforge_traffic_accepted_total",
				Help: "Background vehicles added to scenarios",
			},
		),
		TrafficRejected: f.NewCounter(
			prometheus.CounterOpts{
				Name: "scenarioforge_traffic_rejected_total",
				Help: "Background candidates rejected by the conflict rule",
			},
		),
		PlacementErrors: f.NewCounter(
			prometheus.CounterOpts{
				Name: "scenarioforge_placement_errors_total",
				Help: "Failed placement source calls",
			},
		),
		PlacementLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scenarioforge_placement_duration_seconds",
				Help:    "Placement source call duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
		),
		BreakerOpen: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "scenarioforge_placement_breaker_open",
				Help: "1 while the placement circuit breaker rejects calls",
			},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordCompile records one compilation. outcome is "ok", "structural" or
// "output".
func (m *Metrics) RecordCompile(mapKey, outcome string, duration time.Duration, maneuvers int) {
	if m == nil {
		return
	}
	m.CompilesTotal.WithLabelValues(mapKey, outcome).Inc()
	m.CompileDuration.Observe(duration.Seconds())
	if outcome == "ok" {
		m.Maneuvers.Observe(float64(maneuvers))
	}

	m.mu.Lock()
	m.snapshot.Compiles++
	if outcome != "ok" {
		m.snapshot.Failures++
	}
	m.mu.Unlock()
}

// RecordDiagnostic counts one diagnostic of the given kind.
func (m *Metrics) RecordDiagnostic(kind string) {
	if m == nil {
		return
	}
	m.Diagnostics.WithLabelValues(kind).Inc()

	m.mu.Lock()
	m.snapshot.Diagnostics++
	m.mu.Unlock()
}

// RecordTraffic records the outcome of one synthesis pass.
func (m *Metrics) RecordTraffic(accepted, rejected int) {
	if m == nil {
		return
	}
	m.TrafficAccepted.Add(float64(accepted))
	m.TrafficRejected.Add(float64(rejected))

	m.mu.Lock()
	m.snapshot.TrafficVehicle += int64(accepted)
	m.mu.Unlock()
}

// RecordPlacementCall records a placement source call.
func (m *Metrics) RecordPlacementCall(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.PlacementLatency.Observe(duration.Seconds())
	if err != nil {
		m.PlacementErrors.Inc()
	}
}

// SetBreakerOpen reports whether the placement breaker is open.
func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
	} else {
		m.BreakerOpen.Set(0)
	}
}

// Snapshot returns current totals.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

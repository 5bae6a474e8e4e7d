package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	ErrorTotal      *prometheus.CounterVec

	// Mutation metrics
	MutationsTotal    *prometheus.CounterVec
	MutationLatency   *prometheus.HistogramVec
	MutationsInFlight prometheus.Gauge

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Backend metrics
	BackendOperations *prometheus.CounterVec
	BackendLatency    *prometheus.HistogramVec
	BreakerState      *prometheus.GaugeVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path", "status"}),
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		ErrorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total number of HTTP errors",
		}, []string{"method", "path", "status"}),

		MutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mutation",
			Name:      "total",
			Help:      "Total number of mutations by operation and outcome",
		}, []string{"operation", "outcome"}),
		MutationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mutation",
			Name:      "duration_seconds",
			Help:      "Duration of mutations including the remote call",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),
		MutationsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mutation",
			Name:      "in_flight",
			Help:      "Current number of mutations waiting or running",
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of cache lookups",
		}, []string{"cache", "result"}),

		BackendOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "operations_total",
			Help:      "Total number of backend operations",
		}, []string{"operation", "status"}),
		BackendLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "operation_duration_seconds",
			Help:      "Duration of backend operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "breaker_open",
			Help:      "1 while the named circuit breaker is open",
		}, []string{"name"}),

		RedisOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operations_total",
			Help:      "Total number of Redis operations",
		}, []string{"operation", "status"}),
	}
}

// ObserveMutation records one finished mutation.
func (m *Metrics) ObserveMutation(operation string, start time.Time, err error) {
	m.MutationsTotal.WithLabelValues(operation, outcome(err)).Inc()
	m.MutationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveBackend(operation string, start time.Time, err error) {
	m.BackendOperations.WithLabelValues(operation, outcome(err)).Inc()
	m.BackendLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) CacheHit(cache string) {
	m.CacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (m *Metrics) CacheMiss(cache string) {
	m.CacheLookups.WithLabelValues(cache, "miss").Inc()
}

// BreakerChanged is suitable as a circuit breaker state callback.
func (m *Metrics) BreakerChanged(name, _, to string) {
	v := 0.0
	if to == "open" {
		v = 1
	}
	m.BreakerState.WithLabelValues(name).Set(v)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

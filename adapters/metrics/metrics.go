// Package metrics provides Prometheus metrics for the JSON:API client and the
// fixture server.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "apiquery"

// Collector holds all Prometheus metrics.
type Collector struct {
	// Client request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	RequestErrors    *prometheus.CounterVec

	// Decoding metrics
	RecordsDecoded *prometheus.CounterVec
	CastErrors     *prometheus.CounterVec

	// Fixture server metrics
	FixtureRequests *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered with the default registry.
func New(namespace string) *Collector {
	return newCollector(promauto.With(prometheus.DefaultRegisterer), namespace)
}

// NewWithRegistry creates a collector registered with reg.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer, namespace string) *Collector {
	return newCollector(promauto.With(reg), namespace)
}

func newCollector(factory promauto.Factory, namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of JSON:API requests sent",
			},
			[]string{"resource", "method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "JSON:API request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"resource", "method"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of JSON:API requests currently in flight",
			},
		),
		RequestErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "request_errors_total",
				Help:      "Total number of failed JSON:API requests",
			},
			[]string{"resource", "type"},
		),

		RecordsDecoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_decoded_total",
				Help:      "Total number of primary records decoded",
			},
			[]string{"resource"},
		),
		CastErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cast_errors_total",
				Help:      "Total number of responses rejected by a property cast",
			},
			[]string{"resource"},
		),

		FixtureRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fixture_requests_total",
				Help:      "Total number of requests served by the fixture server",
			},
			[]string{"resource", "status"},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// StatusClass reduces a status code to its class label, e.g. 404 -> "4xx".
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// Package metrics provides the centralized Prometheus metrics registry for the multi builder.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bbl_multi_builder"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SourceFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fetches_total",
		Help:      "Total number of statistics source fetches",
	}, []string{"source", "outcome"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of HTTP source circuit breaker trips",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of API requests",
	}, []string{"method", "route", "status"})
	StatsRefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_refreshes_total",
		Help:      "Total number of scheduled statistics refreshes",
	}, []string{"outcome"})
)

// Gauge metrics
var (
	StatsRowsLoaded = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stats_rows_loaded",
		Help:      "Number of player statistics rows loaded per role",
	}, []string{"role"})
)

// Histogram metrics
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	StatsLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stats_load_duration_seconds",
		Help:      "Duration of statistics table loads in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(SourceFetchesTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(StatsRefreshesTotal)

		// Register gauge metrics
		registry.MustRegister(StatsRowsLoaded)

		// Register histogram metrics
		registry.MustRegister(HTTPRequestDuration)
		registry.MustRegister(StatsLoadDuration)

		// Register recommendation metrics
		registry.MustRegister(RecommendationRequestsTotal)
		registry.MustRegister(RecommendationCacheHitRatio)
		registry.MustRegister(MultiBuildsTotal)
		registry.MustRegister(MultiCombinedPercentage)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSourceFetch records the outcome of a statistics source fetch.
func RecordSourceFetch(source string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	SourceFetchesTotal.WithLabelValues(source, outcome).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordHTTPRequest records a served API request.
func RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordStatsLoaded records the size of a freshly loaded statistics table.
func RecordStatsLoaded(batters, bowlers int, durationSeconds float64) {
	StatsRowsLoaded.WithLabelValues("batter").Set(float64(batters))
	StatsRowsLoaded.WithLabelValues("bowler").Set(float64(bowlers))
	StatsLoadDuration.Observe(durationSeconds)
}

// RecordStatsRefresh records the outcome of a scheduled statistics refresh.
func RecordStatsRefresh(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	StatsRefreshesTotal.WithLabelValues(outcome).Inc()
}

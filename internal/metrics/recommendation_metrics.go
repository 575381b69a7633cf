package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RecommendationRequestsTotal tracks recommendation lookups by kind and cache use
	RecommendationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_requests_total",
			Help:      "Total recommendation lookups",
		},
		[]string{"kind", "cached"},
	)

	// RecommendationCacheHitRatio tracks the recommendation cache hit ratio
	RecommendationCacheHitRatio = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recommendation_cache_hit_ratio",
			Help:      "Hit ratio of the recommendation cache",
		},
	)

	// MultiBuildsTotal tracks multi builds by outcome
	MultiBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "multi_builds_total",
			Help:      "Total multi bet builds",
		},
		[]string{"outcome"},
	)

	// MultiCombinedPercentage tracks the distribution of combined percentages
	MultiCombinedPercentage = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "multi_combined_percentage",
			Help:      "Combined percentage of built multis",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
)

// RecordRecommendation records a recommendation lookup
func RecordRecommendation(kind string, cached bool) {
	label := "false"
	if cached {
		label = "true"
	}
	RecommendationRequestsTotal.WithLabelValues(kind, label).Inc()
}

// UpdateCacheHitRatio sets the recommendation cache hit ratio
func UpdateCacheHitRatio(ratio float64) {
	RecommendationCacheHitRatio.Set(ratio)
}

// RecordMultiBuild records a multi build outcome and, on success, its combined percentage
func RecordMultiBuild(outcome string, combinedPercentage float64) {
	MultiBuildsTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		MultiCombinedPercentage.Observe(combinedPercentage)
	}
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Model and query Prometheus metrics.
var (
	ModelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skillapi",
			Name:      "model_requests_total",
			Help:      "Total number of model API requests",
		},
		[]string{"provider", "skill", "status"},
	)

	ModelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skillapi",
			Name:      "model_request_duration_seconds",
			Help:      "Model API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "skill"},
	)

	ModelErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skillapi",
			Name:      "model_errors_total",
			Help:      "Total model API errors",
		},
		[]string{"provider", "skill", "error_type"},
	)

	PredictionsPerQuery = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skillapi",
			Name:      "predictions_per_query",
			Help:      "Number of predictions returned per query",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"skill"},
	)

	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skillapi",
			Name:      "query_cache_total",
			Help:      "Query cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var modelMetricsRegistered bool

// RegisterModelMetrics registers model and query metrics. Must be called
// once from main.
func RegisterModelMetrics() {
	if modelMetricsRegistered {
		return
	}
	prometheus.MustRegister(ModelRequestsTotal)
	prometheus.MustRegister(ModelRequestDuration)
	prometheus.MustRegister(ModelErrorsTotal)
	prometheus.MustRegister(PredictionsPerQuery)
	prometheus.MustRegister(QueryCacheTotal)
	modelMetricsRegistered = true
}

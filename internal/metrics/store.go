package metrics

import "github.com/prometheus/client_golang/prometheus"

// Storage Prometheus metrics.
var (
	StoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mpapi",
			Name:      "store_requests_total",
			Help:      "Total number of document store operations",
		},
		[]string{"collection", "op", "status"},
	)

	StoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mpapi",
			Name:      "store_request_duration_seconds",
			Help:      "Document store operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"collection", "op"},
	)

	ObjectFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mpapi",
			Name:      "object_fetch_total",
			Help:      "Total number of object storage fetches",
		},
		[]string{"bucket", "status"},
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mpapi",
			Name:      "response_cache_total",
			Help:      "Response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var storeMetricsRegistered bool

// RegisterStoreMetrics registers Prometheus storage metrics. Must be called once from main.
func RegisterStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(StoreRequestsTotal)
	prometheus.MustRegister(StoreRequestDuration)
	prometheus.MustRegister(ObjectFetchTotal)
	prometheus.MustRegister(ResponseCacheTotal)
	storeMetricsRegistered = true
}

// ObserveStore records one store operation.
func ObserveStore(collection, op string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreRequestsTotal.WithLabelValues(collection, op, status).Inc()
	StoreRequestDuration.WithLabelValues(collection, op).Observe(seconds)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminstate_operations_total",
		Help: "Total store operations by name and result",
	}, []string{"op", "result"})

	authorizationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminstate_authorization_denials_total",
		Help: "Operations rejected by capability or ownership checks",
	}, []string{"op"})

	rateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adminstate_rate_limit_rejections_total",
		Help: "Calls rejected by the sliding-window rate limiter",
	})

	snapshotDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adminstate_snapshot_duration_seconds",
		Help:    "Duration of snapshot save and restore operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind", "result"})

	recordCounts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "adminstate_records",
		Help: "Current record counts by entity",
	}, []string{"entity"})
)

// ObserveOperation records the outcome of one store operation.
func ObserveOperation(op, result string) {
	operationsTotal.WithLabelValues(op, result).Inc()
}

// ObserveDenied records an authorization rejection.
func ObserveDenied(op string) {
	authorizationDenials.WithLabelValues(op).Inc()
}

// ObserveRateLimited records a rate-limiter rejection.
func ObserveRateLimited() {
	rateLimitRejections.Inc()
}

// ObserveSnapshot records the duration of a snapshot save or restore.
func ObserveSnapshot(kind, result string, elapsed time.Duration) {
	snapshotDuration.WithLabelValues(kind, result).Observe(elapsed.Seconds())
}

// SetRecordCount updates the live record gauge for an entity family.
func SetRecordCount(entity string, count uint64) {
	recordCounts.WithLabelValues(entity).Set(float64(count))
}

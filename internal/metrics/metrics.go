// Package metrics exposes Prometheus instruments for the storage layer.
// The embedding process decides how to serve the default registry; this
// package only records.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "moneymatters",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of store operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// ConstraintRejections counts writes rejected by the storage engine,
	// labeled by taxonomy kind (uniqueness, foreign_key, required_field).
	ConstraintRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moneymatters",
		Subsystem: "store",
		Name:      "constraint_rejections_total",
		Help:      "Writes rejected by an integrity constraint.",
	}, []string{"kind"})
)

// Observe times one store operation:
//
//	defer metrics.Observe("user.create")()
func Observe(op string) func() {
	start := time.Now()
	return func() {
		storeOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "manuscript"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)

	// StoreOperations counts backing-store calls by backend, operation and
	// outcome (ok, not_found, conflict, unavailable).
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Subsystem: "kv", Name: "operations_total", Help: "Backing store operations by backend, op and result."},
		[]string{"backend", "op", "result"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Subsystem: "kv", Name: "operation_seconds", Help: "Backing store operation latency.", Buckets: prometheus.DefBuckets},
		[]string{"backend", "op"},
	)
	// EntityWrites counts successful entity mutations by kind (document, list) and op.
	EntityWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "entity_writes_total", Help: "Successful entity writes by kind and op."},
		[]string{"kind", "op"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(StoreOperations)
	reg.MustRegister(StoreLatency)
	reg.MustRegister(EntityWrites)
}

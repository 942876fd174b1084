package access

import "github.com/prometheus/client_golang/prometheus"

var (
	accessDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pressgate",
		Subsystem: "access",
		Name:      "decisions_total",
		Help:      "Access verification decisions by outcome and denial reason.",
	}, []string{"outcome", "reason"})

	verifyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pressgate",
		Subsystem: "access",
		Name:      "verify_duration_seconds",
		Help:      "Latency of access verification.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		accessDecisions,
		verifyDuration,
	)
}

package grant

import "github.com/prometheus/client_golang/prometheus"

var (
	grantsIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pressgate",
		Subsystem: "grants",
		Name:      "issued_total",
		Help:      "Total pay-per-view grants issued.",
	})

	grantRevenue = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pressgate",
		Subsystem: "grants",
		Name:      "revenue_usd_total",
		Help:      "Total pay-per-view revenue in USD.",
	})
)

func init() {
	prometheus.MustRegister(
		grantsIssued,
		grantRevenue,
	)
}

package subscription

import "github.com/prometheus/client_golang/prometheus"

var (
	subscriptionsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pressgate",
		Subsystem: "subscriptions",
		Name:      "created_total",
		Help:      "Total subscriptions created by tier.",
	}, []string{"tier"})

	subscriptionsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pressgate",
		Subsystem: "subscriptions",
		Name:      "cancelled_total",
		Help:      "Total subscriptions cancelled.",
	})
)

func init() {
	prometheus.MustRegister(
		subscriptionsCreated,
		subscriptionsCancelled,
	)
}

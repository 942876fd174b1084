package token

import "github.com/prometheus/client_golang/prometheus"

var (
	tokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pressgate",
		Subsystem: "tokens",
		Name:      "issued_total",
		Help:      "Total access tokens issued.",
	})

	tokensRedeemed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pressgate",
		Subsystem: "tokens",
		Name:      "redeemed_total",
		Help:      "Total access token redemptions.",
	})
)

func init() {
	prometheus.MustRegister(
		tokensIssued,
		tokensRedeemed,
	)
}

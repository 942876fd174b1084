package assess

import "github.com/prometheus/client_golang/prometheus"

var assessmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pressgate",
	Subsystem: "assessments",
	Name:      "total",
	Help:      "Total content assessments by resulting value tier.",
}, []string{"value_tier"})

func init() {
	prometheus.MustRegister(assessmentsTotal)
}

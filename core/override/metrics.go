package override

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	overrideRequests *prometheus.CounterVec
	overrideDates    prometheus.Counter
)

func newCollectors() (*prometheus.CounterVec, prometheus.Counter) {
	reqs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "override_requests_total",
			Help: "Number of override requests by outcome",
		},
		[]string{"outcome"},
	)
	dates := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "override_dates_total",
			Help: "Number of dates covered by applied overrides",
		},
	)
	return reqs, dates
}

func init() {
	overrideRequests, overrideDates = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers override metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(overrideRequests, overrideDates)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	overrideRequests, overrideDates = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

package roster

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	scheduleRuns     prometheus.Counter
	runDuration      prometheus.Histogram
	slotsAssigned    *prometheus.CounterVec
	fallbackAssigned *prometheus.CounterVec
	uncoveredSlots   *prometheus.CounterVec
	trailingHours    *prometheus.GaugeVec
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Histogram, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.GaugeVec) {
	runs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_runs_total",
			Help: "Number of completed schedule generation runs",
		},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "schedule_run_duration_seconds",
			Help:    "Duration of schedule generation runs",
			Buckets: prometheus.DefBuckets,
		},
	)
	slots := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_slots_assigned_total",
			Help: "Number of rotation slots assigned",
		},
		[]string{"rotation"},
	)
	fb := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_fallback_assignments_total",
			Help: "Number of slots filled by relaxed or forced fallback",
		},
		[]string{"rotation", "stage"},
	)
	unc := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_uncovered_slots_total",
			Help: "Number of rotation slots left without an assignee",
		},
		[]string{"rotation"},
	)
	hours := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "schedule_trailing_hours",
			Help: "Trailing on-call hours per engineer at the end of a run",
		},
		[]string{"engineer"},
	)
	return runs, dur, slots, fb, unc, hours
}

func init() {
	scheduleRuns, runDuration, slotsAssigned, fallbackAssigned, uncoveredSlots, trailingHours = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers scheduling metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(scheduleRuns, runDuration, slotsAssigned, fallbackAssigned, uncoveredSlots, trailingHours)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	scheduleRuns, runDuration, slotsAssigned, fallbackAssigned, uncoveredSlots, trailingHours = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

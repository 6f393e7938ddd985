package metrics

import (
	"strconv"

	coremetrics "github.com/rotaops/rota/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records scheduling events in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	spread    prometheus.Gauge
	overrides *prometheus.CounterVec
	syncs     *prometheus.CounterVec
	messages  *prometheus.HistogramVec
	presence  prometheus.Gauge
}

// NewPromSink registers scheduling metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// the configured listen address.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rota_schedule_runs_total",
		Help: "Completed schedule generation runs by outcome severity",
	}, []string{"forced", "uncovered"})
	spread := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rota_hours_stddev",
		Help: "Standard deviation of per-engineer hours in the last run",
	})
	overrides := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rota_override_results_total",
		Help: "Override request outcomes",
	}, []string{"success", "error_type"})
	syncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rota_mirror_syncs_total",
		Help: "Document mirror synchronisations",
	}, []string{"outcome"})
	messages := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rota_direct_message_seconds",
		Help:    "Time between message publish and chat acknowledgment",
		Buckets: prometheus.DefBuckets,
	}, []string{"acknowledged"})
	presence := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rota_presence_keys",
		Help: "Keys written by the last on-call presence push",
	})

	s := &PromSink{}
	if err := register(reg, runs, &s.runs); err != nil {
		return nil, err
	}
	if err := register(reg, spread, &s.spread); err != nil {
		return nil, err
	}
	if err := register(reg, overrides, &s.overrides); err != nil {
		return nil, err
	}
	if err := register(reg, syncs, &s.syncs); err != nil {
		return nil, err
	}
	if err := register(reg, messages, &s.messages); err != nil {
		return nil, err
	}
	if err := register(reg, presence, &s.presence); err != nil {
		return nil, err
	}
	return s, nil
}

// register keeps the existing collector when one with the same
// descriptor is already registered, so repeated sink construction in one
// process is safe.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, out *T) error {
	if err := reg.Register(c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			return err
		}
		*out = existing
		return nil
	}
	*out = c
	return nil
}

// RecordScheduleRun counts the run and exposes the fairness spread.
func (s *PromSink) RecordScheduleRun(ev coremetrics.RunResult) error {
	s.runs.WithLabelValues(
		strconv.FormatBool(ev.Forced > 0),
		strconv.FormatBool(ev.Uncovered > 0),
	).Inc()
	s.spread.Set(ev.StddevHours)
	return nil
}

// RecordOverride counts the override outcome.
func (s *PromSink) RecordOverride(ev coremetrics.OverrideEvent) error {
	errType := ev.ErrorType
	if ev.Success {
		errType = ""
	}
	s.overrides.WithLabelValues(strconv.FormatBool(ev.Success), errType).Inc()
	return nil
}

// RecordMirrorSync counts the sync outcome.
func (s *PromSink) RecordMirrorSync(ev coremetrics.MirrorSyncEvent) error {
	outcome := "ok"
	if ev.Error != "" {
		outcome = "error"
	}
	s.syncs.WithLabelValues(outcome).Inc()
	return nil
}

// RecordDirectMessage observes the delivery latency histogram.
func (s *PromSink) RecordDirectMessage(ev coremetrics.DirectMessageEvent) error {
	s.messages.WithLabelValues(strconv.FormatBool(ev.Acknowledged)).Observe(ev.Latency.Seconds())
	return nil
}

// RecordPresencePush sets the gauge to the size of the pushed window.
func (s *PromSink) RecordPresencePush(ev coremetrics.PresenceEvent) error {
	s.presence.Set(float64(ev.Keys))
	return nil
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/core/metrics/workload"
)

// WorkloadSink records persisted slot decisions as per-engineer workload KPIs.
type WorkloadSink struct {
	store  workload.Store
	hours  *prometheus.GaugeVec
	shifts *prometheus.GaugeVec
	mean   *prometheus.GaugeVec
}

// NewWorkloadSink creates a sink with Prometheus gauges registered on reg.
func NewWorkloadSink(store workload.Store, reg prometheus.Registerer) (*WorkloadSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	hours := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rota_engineer_hours",
		Help: "Daily on-call hours per engineer",
	}, []string{"engineer", "day"})
	shifts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rota_engineer_shifts",
		Help: "Daily shift count per engineer",
	}, []string{"engineer", "day"})
	mean := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rota_engineer_mean_shift_hours",
		Help: "Daily mean hours per shift per engineer",
	}, []string{"engineer", "day"})
	s := &WorkloadSink{store: store}
	if err := register(reg, hours, &s.hours); err != nil {
		return nil, err
	}
	if err := register(reg, shifts, &s.shifts); err != nil {
		return nil, err
	}
	if err := register(reg, mean, &s.mean); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordScheduleRun implements MetricsSink; run summaries are not workload
// KPIs, so it is a no-op.
func (s *WorkloadSink) RecordScheduleRun(coremetrics.RunResult) error { return nil }

// RecordAssignments folds slot decisions into the workload store and refreshes
// the day's gauges for each touched engineer.
func (s *WorkloadSink) RecordAssignments(evs []coremetrics.AssignmentEvent) error {
	for _, ev := range evs {
		rec := workload.Record{
			Engineer: ev.Engineer,
			Date:     ev.Date,
			Hours:    ev.Rotation.Hours(),
			Shifts:   1,
		}
		if err := s.store.Add(rec); err != nil {
			return err
		}
		dayStr := workload.Day(rec.Date).Format("2006-01-02")
		records, _ := s.store.Query(ev.Engineer, rec.Date, rec.Date)
		if len(records) > 0 {
			rr := records[0]
			s.hours.WithLabelValues(rr.Engineer, dayStr).Set(rr.Hours)
			s.shifts.WithLabelValues(rr.Engineer, dayStr).Set(float64(rr.Shifts))
			s.mean.WithLabelValues(rr.Engineer, dayStr).Set(rr.MeanShiftHours())
		}
	}
	return nil
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/core/metrics/workload"
	"github.com/rotaops/rota/core/model"
)

func TestWorkloadSink_RecordAssignments(t *testing.T) {
	store := workload.NewMemoryStore()
	reg := prometheus.NewRegistry()
	sink, err := NewWorkloadSink(store, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	evs := []coremetrics.AssignmentEvent{
		{Date: date, Rotation: model.RotationAM, Engineer: "alice@example.com", Time: time.Now()},
		{Date: date, Rotation: model.RotationCore, Engineer: "alice@example.com", Time: time.Now()},
		{Date: date, Rotation: model.RotationPM, Engineer: "bob@example.com", Time: time.Now()},
	}
	if err := sink.RecordAssignments(evs); err != nil {
		t.Fatalf("record error: %v", err)
	}

	recs, err := store.Query("alice@example.com", date, date)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Hours != 9 || recs[0].Shifts != 2 {
		t.Errorf("aggregation = %+v, want 9h over 2 shifts", recs[0])
	}

	day := date.Format("2006-01-02")
	if got := testutil.ToFloat64(sink.hours.WithLabelValues("alice@example.com", day)); got != 9 {
		t.Errorf("hours gauge = %v, want 9", got)
	}
	if got := testutil.ToFloat64(sink.shifts.WithLabelValues("bob@example.com", day)); got != 1 {
		t.Errorf("shifts gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sink.mean.WithLabelValues("alice@example.com", day)); got != 4.5 {
		t.Errorf("mean gauge = %v, want 4.5", got)
	}
}

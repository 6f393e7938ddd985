package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/core/model"
)

func TestPromSink_RecordScheduleRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	run := coremetrics.RunResult{
		Assignments: 15,
		Weeks:       1,
		Forced:      1,
		StddevHours: 2.5,
		Time:        time.Now(),
	}
	if err := sink.RecordScheduleRun(run); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP rota_schedule_runs_total Completed schedule generation runs by outcome severity
# TYPE rota_schedule_runs_total counter
rota_schedule_runs_total{forced="true",uncovered="false"} 1
`
	if err := testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if got := testutil.ToFloat64(sink.spread); got != 2.5 {
		t.Errorf("spread gauge = %v, want 2.5", got)
	}
}

func TestPromSink_RecordOverride(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)

	if err := sink.RecordOverride(coremetrics.OverrideEvent{
		Rotation: model.RotationCore,
		Success:  true,
		// stale type from a recovered path must not leak into the label
		ErrorType: "UNKNOWN_ERROR",
	}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if err := sink.RecordOverride(coremetrics.OverrideEvent{
		Rotation:  model.RotationAM,
		Success:   false,
		ErrorType: "VALIDATION_ERROR",
	}); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP rota_override_results_total Override request outcomes
# TYPE rota_override_results_total counter
rota_override_results_total{error_type="",success="true"} 1
rota_override_results_total{error_type="VALIDATION_ERROR",success="false"} 1
`
	if err := testutil.CollectAndCompare(sink.overrides, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestPromSink_RecordDirectMessage(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)

	if err := sink.RecordDirectMessage(coremetrics.DirectMessageEvent{
		Recipient:    "alice@example.com",
		Attempts:     1,
		Acknowledged: true,
		Latency:      120 * time.Millisecond,
	}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if c := testutil.CollectAndCount(sink.messages); c == 0 {
		t.Errorf("latency not recorded")
	}

	if err := sink.RecordPresencePush(coremetrics.PresenceEvent{Dates: 5, Keys: 15}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if got := testutil.ToFloat64(sink.presence); got != 15 {
		t.Errorf("presence gauge = %v, want 15", got)
	}
}

func TestPromSink_ReregisterSameRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first create: %v", err)
	}
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	sink := sinkIf.(*PromSink)
	if err := sink.RecordMirrorSync(coremetrics.MirrorSyncEvent{Created: 2}); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP rota_mirror_syncs_total Document mirror synchronisations
# TYPE rota_mirror_syncs_total counter
rota_mirror_syncs_total{outcome="ok"} 1
`
	if err := testutil.CollectAndCompare(sink.syncs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

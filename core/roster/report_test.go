package roster

import (
	"math"
	"testing"
	"time"

	"github.com/rotaops/rota/core/model"
)

func TestReportStatistics(t *testing.T) {
	start := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	r := newReport(start, start.AddDate(0, 0, 5), start)
	for i := 0; i < 5; i++ {
		d := start.AddDate(0, 0, i)
		r.add(model.Assignment{Date: d, Rotation: model.RotationCore, Engineer: "a@x.io"})
		r.add(model.Assignment{Date: d, Rotation: model.RotationAM, Engineer: "b@x.io"})
	}
	r.finalize()

	if r.Assignments != 10 {
		t.Fatalf("assignments = %d, want 10", r.Assignments)
	}
	if r.Hours["a@x.io"] != 30 || r.Hours["b@x.io"] != 15 {
		t.Fatalf("hours = %v", r.Hours)
	}
	if r.MeanHours != 22.5 {
		t.Errorf("mean = %v, want 22.5", r.MeanHours)
	}
	// Sample stddev of {15, 30}.
	if math.Abs(r.StddevHours-10.6066) > 0.001 {
		t.Errorf("stddev = %v, want ~10.6066", r.StddevHours)
	}
}

func TestReportSingleEngineerHasZeroSpread(t *testing.T) {
	start := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	r := newReport(start, start.AddDate(0, 0, 1), start)
	r.add(model.Assignment{Date: start, Rotation: model.RotationCore, Engineer: "solo@x.io"})
	r.finalize()
	if r.MeanHours != 6 || r.StddevHours != 0 {
		t.Fatalf("mean/stddev = %v/%v, want 6/0", r.MeanHours, r.StddevHours)
	}
}

func TestReportFallbackCount(t *testing.T) {
	start := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	r := newReport(start, start, start)
	r.note(Note{Stage: FallbackForced})
	r.note(Note{Stage: FallbackRelaxed})
	r.note(Note{Stage: FallbackForced})
	if r.FallbackCount(FallbackForced) != 2 || r.FallbackCount(FallbackRelaxed) != 1 {
		t.Fatalf("unexpected counts: %+v", r.Notes)
	}
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/core/model"
)

func TestInfluxSink_RecordScheduleRun(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	run := coremetrics.RunResult{
		WindowStart: start,
		WindowEnd:   end,
		Assignments: 15,
		Weeks:       1,
		Relaxed:     1,
		Forced:      0,
		Uncovered:   0,
		MeanHours:   12,
		StddevHours: 1.5,
		Duration:    42 * time.Millisecond,
		Time:        now,
	}
	if err := sink.RecordScheduleRun(run); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p := write.NewPointWithMeasurement("schedule_run").
		AddTag("component", "roster_engine").
		AddTag("window_start", "2026-03-02").
		AddTag("window_end", "2026-03-06").
		AddField("assignments", 15).
		AddField("weeks", 1).
		AddField("relaxed", 1).
		AddField("forced", 0).
		AddField("uncovered", 0).
		AddField("mean_hours", 12.0).
		AddField("stddev_hours", 1.5).
		AddField("duration_ms", int64(42)).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body:\n got %s\nwant %s", body, expected)
	}
}

func TestInfluxSink_RecordAssignments(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, strings.TrimSpace(string(data)))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	evs := []coremetrics.AssignmentEvent{
		{Date: date, Rotation: model.RotationCore, Engineer: "alice@example.com", Time: now},
		{Date: date, Rotation: model.RotationPM, Engineer: "bob@example.com", Fallback: "forced", Time: now},
	}
	if err := sink.RecordAssignments(evs); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p1 := write.NewPointWithMeasurement("slot_assignment").
		AddTag("rotation", "core").
		AddTag("engineer", "alice@example.com").
		AddTag("fallback", "none").
		AddTag("component", "roster_engine").
		AddField("date", "2026-03-02").
		AddField("hours", 6.0).
		SetTime(now)
	p2 := write.NewPointWithMeasurement("slot_assignment").
		AddTag("rotation", "pm").
		AddTag("engineer", "bob@example.com").
		AddTag("fallback", "forced").
		AddTag("component", "roster_engine").
		AddField("date", "2026-03-02").
		AddField("hours", 3.0).
		SetTime(now)
	exp1 := strings.TrimSpace(write.PointToLineProtocol(p1, time.Nanosecond))
	exp2 := strings.TrimSpace(write.PointToLineProtocol(p2, time.Nanosecond))
	if len(bodies) != 2 || bodies[0] != exp1 || bodies[1] != exp2 {
		t.Errorf("unexpected bodies: %#v", bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

package calendar

import (
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
)

func TestEventInterval_AllDay(t *testing.T) {
	// all-day events carry an exclusive end date
	ev := &calendar.Event{
		Start: &calendar.EventDateTime{Date: "2026-03-02"},
		End:   &calendar.EventDateTime{Date: "2026-03-05"},
	}
	iv, err := eventInterval(ev)
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	if !iv.Start.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", iv.Start)
	}
	if !iv.End.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want inclusive 2026-03-04", iv.End)
	}
}

func TestEventInterval_Timed(t *testing.T) {
	ev := &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2026-03-02T09:00:00Z"},
		End:   &calendar.EventDateTime{DateTime: "2026-03-03T17:30:00Z"},
	}
	iv, err := eventInterval(ev)
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	if !iv.Start.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", iv.Start)
	}
	if !iv.End.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", iv.End)
	}
}

func TestEventInterval_TimedEndingAtMidnight(t *testing.T) {
	ev := &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2026-03-02T09:00:00Z"},
		End:   &calendar.EventDateTime{DateTime: "2026-03-04T00:00:00Z"},
	}
	iv, err := eventInterval(ev)
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	if !iv.End.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, midnight end must not cover the next day", iv.End)
	}
}

func TestEventInterval_MissingBounds(t *testing.T) {
	if _, err := eventInterval(&calendar.Event{}); err == nil {
		t.Fatalf("expected error for event without bounds")
	}
}

package roster

import (
	"testing"
	"time"

	"github.com/rotaops/rota/core/model"
)

func TestExpandWeekFromMonday(t *testing.T) {
	mon := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	day := []model.Assignment{
		{Date: mon, Rotation: model.RotationCore, Engineer: "core@x.io"},
		{Date: mon, Rotation: model.RotationAM, Engineer: "am@x.io"},
		{Date: mon, Rotation: model.RotationPM, Engineer: "pm@x.io"},
	}
	week, err := ExpandWeek(day, mon)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(week) != 15 {
		t.Fatalf("expected 15 assignments, got %d", len(week))
	}
	byDate := map[string]int{}
	for _, a := range week {
		byDate[a.Date.Format(model.DateFormat)]++
		if !model.IsWeekday(a.Date) {
			t.Errorf("weekend date %s", a.Date.Format(model.DateFormat))
		}
	}
	for d := mon; d.Weekday() != time.Saturday; d = d.AddDate(0, 0, 1) {
		if byDate[d.Format(model.DateFormat)] != 3 {
			t.Errorf("date %s has %d rotations, want 3", d.Format(model.DateFormat), byDate[d.Format(model.DateFormat)])
		}
	}
}

func TestExpandWeekMidWeekAnchor(t *testing.T) {
	thu := time.Date(2025, 8, 7, 0, 0, 0, 0, time.UTC)
	day := []model.Assignment{{Date: thu, Rotation: model.RotationCore, Engineer: "core@x.io"}}
	week, err := ExpandWeek(day, thu)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	// Thursday and Friday only.
	if len(week) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(week))
	}
	if !week[0].Date.Equal(thu) || !week[1].Date.Equal(thu.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected dates %v, %v", week[0].Date, week[1].Date)
	}
}

func TestExpandWeekFridayAnchorIsItself(t *testing.T) {
	fri := time.Date(2025, 8, 8, 0, 0, 0, 0, time.UTC)
	day := []model.Assignment{{Date: fri, Rotation: model.RotationAM, Engineer: "am@x.io"}}
	week, err := ExpandWeek(day, fri)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(week) != 1 || !week[0].Date.Equal(fri) {
		t.Fatalf("friday anchor must expand to itself, got %v", week)
	}
}

func TestExpandWeekRejectsWeekendAnchor(t *testing.T) {
	sat := time.Date(2025, 8, 9, 0, 0, 0, 0, time.UTC)
	if _, err := ExpandWeek(nil, sat); err == nil {
		t.Fatal("expected error for weekend anchor")
	}
}

func TestExpandWeekRejectsOffAnchorAssignments(t *testing.T) {
	mon := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	day := []model.Assignment{{Date: mon.AddDate(0, 0, 1), Rotation: model.RotationAM, Engineer: "am@x.io"}}
	if _, err := ExpandWeek(day, mon); err == nil {
		t.Fatal("expected error for assignment dated off the anchor")
	}
}

func TestExpandWeekEmptyDay(t *testing.T) {
	mon := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	week, err := ExpandWeek(nil, mon)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(week) != 0 {
		t.Fatalf("empty day expands to nothing, got %d", len(week))
	}
}

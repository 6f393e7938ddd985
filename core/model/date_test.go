package model

import (
	"testing"
	"time"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func TestWeekdaysInRangeSkipsWeekend(t *testing.T) {
	// Friday through Tuesday: Saturday and Sunday must be dropped.
	days := WeekdaysInRange(date(t, "2025-08-08"), date(t, "2025-08-12"))
	want := []string{"2025-08-08", "2025-08-11", "2025-08-12"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days got %d: %v", len(want), len(days), days)
	}
	for i, w := range want {
		if got := days[i].Format(DateFormat); got != w {
			t.Errorf("day %d: expected %s got %s", i, w, got)
		}
	}
}

func TestWeekdaysInRangeSingleDay(t *testing.T) {
	days := WeekdaysInRange(date(t, "2025-08-04"), date(t, "2025-08-04"))
	if len(days) != 1 || days[0].Format(DateFormat) != "2025-08-04" {
		t.Fatalf("expected single Monday got %v", days)
	}
	if days := WeekdaysInRange(date(t, "2025-08-09"), date(t, "2025-08-10")); len(days) != 0 {
		t.Fatalf("expected no weekdays in a weekend range, got %v", days)
	}
}

func TestNextWeekday(t *testing.T) {
	if got := NextWeekday(date(t, "2025-08-09")); got.Format(DateFormat) != "2025-08-11" {
		t.Fatalf("Saturday should advance to Monday, got %s", got.Format(DateFormat))
	}
	if got := NextWeekday(date(t, "2025-08-06")); got.Format(DateFormat) != "2025-08-06" {
		t.Fatalf("Wednesday should stay put, got %s", got.Format(DateFormat))
	}
}

func TestNextMonday(t *testing.T) {
	cases := map[string]string{
		"2025-08-04": "2025-08-11", // Monday advances a full week
		"2025-08-06": "2025-08-11", // Wednesday advances to next Monday
		"2025-08-08": "2025-08-11", // Friday
		"2025-08-10": "2025-08-11", // Sunday
	}
	for in, want := range cases {
		if got := NextMonday(date(t, in)).Format(DateFormat); got != want {
			t.Errorf("NextMonday(%s): expected %s got %s", in, want, got)
		}
	}
}

func TestWeekFriday(t *testing.T) {
	cases := map[string]string{
		"2025-08-04": "2025-08-08",
		"2025-08-08": "2025-08-08",
		"2025-08-09": "2025-08-08",
		"2025-08-10": "2025-08-08",
	}
	for in, want := range cases {
		if got := WeekFriday(date(t, in)).Format(DateFormat); got != want {
			t.Errorf("WeekFriday(%s): expected %s got %s", in, want, got)
		}
	}
}

func TestDayTruncatesToUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*3600)
	d := Day(time.Date(2025, 8, 4, 23, 45, 0, 0, loc))
	if d.Hour() != 0 || d.Location() != time.UTC || d.Day() != 4 {
		t.Fatalf("expected midnight UTC on the 4th, got %v", d)
	}
}

package model

import "time"

// DateFormat is the canonical wire and storage form for schedule dates.
const DateFormat = "2006-01-02"

// Day truncates t to midnight UTC. All schedule dates are day-granular.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date into its midnight-UTC representation.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// IsWeekday reports whether t falls on Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// NextWeekday advances t forward to the nearest scheduling day. A date
// already on Monday–Friday is returned unchanged.
func NextWeekday(t time.Time) time.Time {
	t = Day(t)
	for !IsWeekday(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// NextMonday returns the Monday of the calendar week after t.
func NextMonday(t time.Time) time.Time {
	t = Day(t).AddDate(0, 0, 1)
	for t.Weekday() != time.Monday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// WeekFriday returns the Friday of t's calendar week. For weekend dates it
// returns the Friday just past.
func WeekFriday(t time.Time) time.Time {
	t = Day(t)
	switch wd := t.Weekday(); {
	case wd == time.Saturday:
		return t.AddDate(0, 0, -1)
	case wd == time.Sunday:
		return t.AddDate(0, 0, -2)
	default:
		return t.AddDate(0, 0, int(time.Friday-wd))
	}
}

// WeekdaysInRange lists every Monday–Friday date in [start, end], both
// ends inclusive, in chronological order.
func WeekdaysInRange(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWeekday(d) {
			days = append(days, d)
		}
	}
	return days
}

// Package workload tracks per-engineer on-call hours by day, feeding the
// fairness dashboards. Records accumulate: adding twice for the same
// (engineer, day) sums hours and shift counts.
package workload

import "time"

// Store persists workload KPI records.
type Store interface {
	Add(Record) error
	Query(engineer string, start, end time.Time) ([]Record, error)
}

// Day aligns t to the start of its day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

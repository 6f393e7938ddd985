package workload

import "time"

// Record aggregates on-call workload for one engineer and day. Hours
// carry the fixed per-rotation durations; Shifts counts assigned slots.
type Record struct {
	Engineer string
	Date     time.Time
	Hours    float64
	Shifts   int
}

// MeanShiftHours returns the average shift length for the day.
func (r Record) MeanShiftHours() float64 {
	if r.Shifts == 0 {
		return 0
	}
	return r.Hours / float64(r.Shifts)
}

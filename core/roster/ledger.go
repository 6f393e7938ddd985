package roster

import (
	"context"

	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/core/store"
)

// Ledger derives per-engineer workload from the trailing base schedule.
// Every method reads the store fresh so rows persisted mid-run count
// toward the next computation.
type Ledger struct {
	schedule store.ScheduleStore
}

func NewLedger(schedule store.ScheduleStore) *Ledger {
	return &Ledger{schedule: schedule}
}

// Assignments returns the raw trailing rows for the last daysBack days.
func (l *Ledger) Assignments(ctx context.Context, daysBack int) ([]model.Assignment, error) {
	return l.schedule.HistoricalAssignments(ctx, daysBack)
}

// HoursByEngineer buckets trailing hours by engineer and rotation.
func (l *Ledger) HoursByEngineer(ctx context.Context, daysBack int) (map[string]map[model.Rotation]float64, error) {
	rows, err := l.schedule.HistoricalAssignments(ctx, daysBack)
	if err != nil {
		return nil, err
	}
	hours := make(map[string]map[model.Rotation]float64)
	for _, a := range rows {
		key := a.EngineerKey()
		if key == "" {
			continue
		}
		if hours[key] == nil {
			hours[key] = make(map[model.Rotation]float64)
		}
		hours[key][a.Rotation] += a.Rotation.Hours()
	}
	return hours, nil
}

// TotalHours sums trailing hours per engineer across rotations.
func (l *Ledger) TotalHours(ctx context.Context, daysBack int) (map[string]float64, error) {
	byRotation, err := l.HoursByEngineer(ctx, daysBack)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64, len(byRotation))
	for key, rot := range byRotation {
		for _, h := range rot {
			totals[key] += h
		}
	}
	return totals, nil
}

// Package store defines the persistence ports used by the scheduling core.
// Implementations live under infra/store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rotaops/rota/core/model"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// Directory exposes the engineer roster.
type Directory interface {
	// Engineers returns every engineer not marked deleted.
	Engineers(ctx context.Context) ([]model.Engineer, error)
	// Lookup resolves an engineer by email key. Returns ErrNotFound when the
	// email is unknown or the engineer is soft-deleted.
	Lookup(ctx context.Context, email string) (model.Engineer, error)
	// SyncEngineers upserts the given roster and soft-deletes engineers
	// absent from it.
	SyncEngineers(ctx context.Context, roster []model.Engineer) error
}

// ScheduleStore persists base schedule assignments.
type ScheduleStore interface {
	// LastScheduledDate returns the most recent assignment date, or
	// ErrNotFound when the schedule is empty.
	LastScheduledDate(ctx context.Context) (time.Time, error)
	// HistoricalAssignments returns assignments dated on or after today
	// minus daysBack. Future-dated rows are included so mid-run writes
	// feed back into workload totals.
	HistoricalAssignments(ctx context.Context, daysBack int) ([]model.Assignment, error)
	// SaveAssignments upserts rows keyed on (date, rotation).
	SaveAssignments(ctx context.Context, rows []model.Assignment) error
	// AssignmentsInRange returns base assignments with start <= date <= end.
	AssignmentsInRange(ctx context.Context, start, end time.Time) ([]model.Assignment, error)
	// Reset deletes every base assignment. Overrides are untouched.
	Reset(ctx context.Context) error
}

// OverrideStore persists manual overrides, which mask base assignments.
type OverrideStore interface {
	// UpsertOverrides writes rows keyed on (date, rotation).
	UpsertOverrides(ctx context.Context, rows []model.Override) error
	// OverridesInRange returns overrides with start <= date <= end.
	OverridesInRange(ctx context.Context, start, end time.Time) ([]model.Override, error)
	// FindDisplacedEngineers returns the distinct engineers currently
	// effective for the given dates and rotation: an existing override
	// when present, otherwise the base assignment. Dates with neither
	// contribute nothing.
	FindDisplacedEngineers(ctx context.Context, dates []time.Time, rotation model.Rotation) ([]string, error)
	// DeleteOverrides removes overrides for the rotation in [start, end] and
	// reports how many rows were deleted.
	DeleteOverrides(ctx context.Context, start, end time.Time, rotation model.Rotation) (int, error)
}

// Store is the full persistence surface of a backend.
type Store interface {
	Directory
	ScheduleStore
	OverrideStore

	// Effective returns the schedule for [start, end] with overrides applied
	// over base assignments.
	Effective(ctx context.Context, start, end time.Time) ([]model.Assignment, error)
	// Repair re-creates missing schema objects and removes rows violating
	// schedule invariants: weekend dates and empty engineer references.
	Repair(ctx context.Context) error

	Close() error
}

// EffectiveFrom merges overrides over base assignments without touching the
// backend, for callers that already hold both slices.
func EffectiveFrom(base []model.Assignment, overrides []model.Override) []model.Assignment {
	masked := make(map[string]model.Assignment, len(base)+len(overrides))
	for _, a := range base {
		masked[a.Key()] = a
	}
	for _, o := range overrides {
		masked[o.Assignment().Key()] = o.Assignment()
	}
	out := make([]model.Assignment, 0, len(masked))
	for _, a := range masked {
		out = append(out, a)
	}
	model.SortAssignments(out)
	return out
}

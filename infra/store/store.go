// Package store provides the SQL and in-memory implementations of the
// persistence ports defined in core/store. All backends share the same
// logical schema: an engineers directory plus assignments and overrides
// tables keyed by (date, rotation).
package store

import (
	"context"
	"time"

	"github.com/rotaops/rota/core/model"
	corestore "github.com/rotaops/rota/core/store"
)

// ranger is the slice of a backend the shared read helpers need.
type ranger interface {
	AssignmentsInRange(ctx context.Context, start, end time.Time) ([]model.Assignment, error)
	OverridesInRange(ctx context.Context, start, end time.Time) ([]model.Override, error)
}

// effective merges overrides over base assignments for [start, end].
func effective(ctx context.Context, r ranger, start, end time.Time) ([]model.Assignment, error) {
	base, err := r.AssignmentsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	ovr, err := r.OverridesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return corestore.EffectiveFrom(base, ovr), nil
}

// findDisplaced resolves the engineer effective for each (date, rotation)
// slot, preferring overrides, and returns the distinct set in
// first-occurrence order. Dates with no effective engineer contribute
// nothing.
func findDisplaced(ctx context.Context, r ranger, dates []time.Time, rotation model.Rotation) ([]string, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	lo, hi := model.Day(dates[0]), model.Day(dates[0])
	for _, d := range dates[1:] {
		day := model.Day(d)
		if day.Before(lo) {
			lo = day
		}
		if day.After(hi) {
			hi = day
		}
	}
	base, err := r.AssignmentsInRange(ctx, lo, hi)
	if err != nil {
		return nil, err
	}
	ovr, err := r.OverridesInRange(ctx, lo, hi)
	if err != nil {
		return nil, err
	}
	eff := make(map[string]string)
	for _, a := range base {
		if a.Rotation == rotation {
			eff[model.Day(a.Date).Format(model.DateFormat)] = a.EngineerKey()
		}
	}
	for _, o := range ovr {
		if o.Rotation == rotation {
			eff[model.Day(o.Date).Format(model.DateFormat)] = o.EngineerKey()
		}
	}
	seen := make(map[string]bool)
	var out []string
	for _, d := range dates {
		key, ok := eff[model.Day(d).Format(model.DateFormat)]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out, nil
}

// Package mirror defines the port for the external document mirror of
// the schedule. Sync is always scoped to an explicit date range; there
// is deliberately no full-resync operation.
package mirror

import (
	"context"
	"time"
)

// SyncResult reports what a ranged sync touched.
type SyncResult struct {
	Dates   int `json:"dates"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Syncer pushes the effective schedule for [start, end] to the mirror.
type Syncer interface {
	SyncRange(ctx context.Context, start, end time.Time) (SyncResult, error)
}

// NopSyncer skips mirroring. Used when no mirror is configured.
type NopSyncer struct{}

func (NopSyncer) SyncRange(context.Context, time.Time, time.Time) (SyncResult, error) {
	return SyncResult{}, nil
}

// Package workloadkpi rebuilds workload aggregates from schedule history.
package workloadkpi

import (
	"github.com/rotaops/rota/core/metrics/workload"
	"github.com/rotaops/rota/core/model"
)

// Backfill processes historical schedule rows and populates the store.
// Rows should be the effective schedule so overrides are counted against
// the engineer who actually held the shift.
func Backfill(store workload.Store, history []model.Assignment) error {
	for _, h := range history {
		rec := workload.Record{
			Engineer: h.EngineerKey(),
			Date:     workload.Day(h.Date),
			Hours:    h.Rotation.Hours(),
			Shifts:   1,
		}
		if err := store.Add(rec); err != nil {
			return err
		}
	}
	return nil
}

package events

import (
	"time"

	"github.com/rotaops/rota/core/model"
)

// OverrideApplied is published when a manual override is persisted.
type OverrideApplied struct {
	Start    time.Time
	End      time.Time
	Rotation model.Rotation
	Engineer string
	Dates    int
	Replaced []string
}

// OverridesRemoved is published when override rows are deleted and the
// base schedule becomes visible again.
type OverridesRemoved struct {
	Start    time.Time
	End      time.Time
	Rotation model.Rotation
	Deleted  int
}

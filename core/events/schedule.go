package events

import (
	"time"

	"github.com/rotaops/rota/core/model"
)

// ScheduleGenerated is published after a generation run persists its window.
type ScheduleGenerated struct {
	Start       time.Time
	End         time.Time
	Assignments int
	Weeks       int
	Forced      int
	Uncovered   int
}

// ForcedAssignment is published when a slot is filled by the last-resort
// fallback, ignoring availability.
type ForcedAssignment struct {
	Date     time.Time
	Rotation model.Rotation
	Engineer string
}

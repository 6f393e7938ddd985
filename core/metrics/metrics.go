package metrics

import (
	"time"

	"github.com/rotaops/rota/core/model"
)

// RunResult summarises one schedule generation run.
type RunResult struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Assignments int
	Weeks       int
	Relaxed     int
	Forced      int
	Uncovered   int
	MeanHours   float64
	StddevHours float64
	Duration    time.Duration
	Time        time.Time
}

// MetricsSink records schedule generation runs for observability purposes.
type MetricsSink interface {
	RecordScheduleRun(ev RunResult) error
}

// AssignmentEvent represents one persisted slot decision.
type AssignmentEvent struct {
	Date     time.Time
	Rotation model.Rotation
	Engineer string
	Fallback string
	Time     time.Time
}

// AssignmentRecorder records individual slot decisions.
type AssignmentRecorder interface {
	RecordAssignments(evs []AssignmentEvent) error
}

// OverrideEvent captures the outcome of an override request.
type OverrideEvent struct {
	Rotation  model.Rotation
	Start     time.Time
	End       time.Time
	Dates     int
	Replaced  int
	Success   bool
	ErrorType string
	Time      time.Time
}

// OverrideRecorder records override outcomes.
type OverrideRecorder interface {
	RecordOverride(ev OverrideEvent) error
}

// MirrorSyncEvent captures one document mirror synchronisation.
type MirrorSyncEvent struct {
	Start   time.Time
	End     time.Time
	Created int
	Updated int
	Skipped int
	Error   string
	Time    time.Time
}

// MirrorSyncRecorder records mirror synchronisations.
type MirrorSyncRecorder interface {
	RecordMirrorSync(ev MirrorSyncEvent) error
}

// DirectMessageEvent captures a chat delivery attempt.
type DirectMessageEvent struct {
	Recipient    string
	Attempts     int
	Acknowledged bool
	Latency      time.Duration
	Error        string
	Time         time.Time
}

// DirectMessageRecorder records chat delivery attempts.
type DirectMessageRecorder interface {
	RecordDirectMessage(ev DirectMessageEvent) error
}

// PresenceEvent captures one push of the on-call window to presence storage.
type PresenceEvent struct {
	Dates int
	Keys  int
	Time  time.Time
}

// PresenceRecorder records presence pushes.
type PresenceRecorder interface {
	RecordPresencePush(ev PresenceEvent) error
}

// NopSink implements MetricsSink and every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordScheduleRun(RunResult) error            { return nil }
func (NopSink) RecordAssignments([]AssignmentEvent) error    { return nil }
func (NopSink) RecordOverride(OverrideEvent) error           { return nil }
func (NopSink) RecordMirrorSync(MirrorSyncEvent) error       { return nil }
func (NopSink) RecordDirectMessage(DirectMessageEvent) error { return nil }
func (NopSink) RecordPresencePush(PresenceEvent) error       { return nil }

package metrics

// MultiSink fans events out to multiple sinks. Optional recorder methods
// are forwarded only to sinks that implement them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordScheduleRun forwards the run summary to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordScheduleRun(ev RunResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordScheduleRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordAssignments forwards slot decisions.
func (m *MultiSink) RecordAssignments(evs []AssignmentEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AssignmentRecorder); ok {
			if err := rec.RecordAssignments(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordOverride forwards override outcomes.
func (m *MultiSink) RecordOverride(ev OverrideEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(OverrideRecorder); ok {
			if err := rec.RecordOverride(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordMirrorSync forwards mirror synchronisations.
func (m *MultiSink) RecordMirrorSync(ev MirrorSyncEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(MirrorSyncRecorder); ok {
			if err := rec.RecordMirrorSync(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordDirectMessage forwards chat delivery attempts.
func (m *MultiSink) RecordDirectMessage(ev DirectMessageEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(DirectMessageRecorder); ok {
			if err := rec.RecordDirectMessage(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPresencePush forwards presence pushes.
func (m *MultiSink) RecordPresencePush(ev PresenceEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PresenceRecorder); ok {
			if err := rec.RecordPresencePush(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Package events defines the scheduling related events emitted on the event bus.
//
// Available event types:
//   - ScheduleGenerated: a generation run persisted new assignments
//   - ForcedAssignment: a slot was filled ignoring availability
//   - OverrideApplied: a manual override was persisted
//   - OverridesRemoved: override rows were deleted, restoring the base schedule
//   - DirectMessageSent: a chat delivery attempt finished
//   - PresencePushed: the on-call window was written to presence storage
package events

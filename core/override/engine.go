// Package override applies manual corrections to the base schedule.
// Overrides are upserted into their own table keyed by (date, rotation)
// and mask the base assignment without mutating it, so removing an
// override restores the original schedule.
package override

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotaops/rota/core/chat"
	"github.com/rotaops/rota/core/events"
	"github.com/rotaops/rota/core/journal"
	"github.com/rotaops/rota/core/logger"
	"github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/core/mirror"
	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/core/roster"
	"github.com/rotaops/rota/core/store"
	"github.com/rotaops/rota/internal/eventbus"
)

// maxHorizonDays bounds how far ahead an override may reach.
const maxHorizonDays = 365

// Request asks to replace the effective assignee for one rotation across
// a date range. Dates arrive as raw strings: parsing is the first
// validation step, not the transport's problem.
type Request struct {
	Engineer  string         `json:"engineer"`
	Rotation  model.Rotation `json:"rotation"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
}

// Generator extends the base schedule when an override outruns it.
type Generator interface {
	Generate(ctx context.Context, lookaheadDays int) ([]model.Assignment, *roster.Report, error)
}

// Engine runs the override pipeline: Received, Validated, Persisted,
// Regeneration-Attempted, Notified, Complete. Validation and persistence
// are hard gates; everything after is best-effort.
type Engine struct {
	directory store.Directory
	overrides store.OverrideStore
	schedule  store.ScheduleStore
	generator Generator
	syncer    mirror.Syncer
	messenger chat.Messenger
	sink      metrics.MetricsSink
	bus       eventbus.EventBus
	journal   journal.Store
	log       logger.Logger
	now       func() time.Time
}

// NewEngine wires an override Engine. The three store ports and the
// logger are required; generator, syncer and messenger may be nil, which
// skips the corresponding best-effort stage.
func NewEngine(directory store.Directory, overrides store.OverrideStore, schedule store.ScheduleStore, generator Generator, syncer mirror.Syncer, messenger chat.Messenger, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Engine, error) {
	if directory == nil || overrides == nil || schedule == nil {
		return nil, errors.New("override: directory, override and schedule stores are required")
	}
	if log == nil {
		return nil, errors.New("override: logger is required")
	}
	if syncer == nil {
		syncer = mirror.NopSyncer{}
	}
	if messenger == nil {
		messenger = chat.NopMessenger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{
		directory: directory,
		overrides: overrides,
		schedule:  schedule,
		generator: generator,
		syncer:    syncer,
		messenger: messenger,
		sink:      sink,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}, nil
}

// SetJournal configures the store used to journal override decisions.
func (e *Engine) SetJournal(store journal.Store) {
	e.journal = store
}

// Apply runs one override request through the pipeline and always
// returns a structured result, never a raw error.
func (e *Engine) Apply(ctx context.Context, req Request) (res Result) {
	started := e.now()
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("override: panic applying request for %s: %v", req.Engineer, r)
			res = Result{Error: "internal error", ErrorType: ErrTypeUnknown}
		}
		e.observe(req, res, started)
	}()

	start, end, eng, fail := e.validate(ctx, req)
	if fail != nil {
		return *fail
	}

	dates := model.WeekdaysInRange(start, end)
	if len(dates) == 0 {
		return failure(StageValidated, "No valid weekdays found in the specified date range")
	}

	// Best-effort read: losing the displaced set degrades notifications,
	// not the override itself.
	replaced, err := e.overrides.FindDisplacedEngineers(ctx, dates, req.Rotation)
	if err != nil {
		e.log.Warnf("override: displaced engineer lookup failed: %v", err)
		replaced = nil
	}
	sort.Strings(replaced)

	rows := make([]model.Override, len(dates))
	for i, d := range dates {
		rows[i] = model.Override{Date: d, Rotation: req.Rotation, Engineer: eng.Email}
	}
	if err := e.overrides.UpsertOverrides(ctx, rows); err != nil {
		e.log.Errorf("override: persist failed for %s: %v", eng.Key(), err)
		return failure(StagePersisted, fmt.Sprintf("failed to save override: %v", err))
	}

	e.maybeRegenerate(ctx, end)

	if _, err := e.syncer.SyncRange(ctx, start, end); err != nil {
		e.log.Warnf("override: mirror sync failed (%s): %v", Classify(StageMirror), err)
	}

	e.notify(ctx, eng, replaced, req.Rotation, start, end)

	if e.bus != nil {
		e.bus.Publish(events.OverrideApplied{
			Start:    start,
			End:      end,
			Rotation: req.Rotation,
			Engineer: eng.Key(),
			Dates:    len(dates),
			Replaced: replaced,
		})
	}

	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(model.DateFormat)
	}
	if e.journal != nil {
		_ = e.journal.Append(ctx, journal.Record{
			Timestamp: e.now(),
			Kind:      journal.KindOverride,
			Rotation:  req.Rotation,
			Engineer:  eng.Key(),
			Dates:     out,
			Replaced:  replaced,
		})
	}
	return Result{
		Success:           true,
		Message:           fmt.Sprintf("Override applied for %s on %d dates", eng.Key(), len(dates)),
		OverriddenDates:   out,
		ReplacedEngineers: replaced,
	}
}

// Remove deletes override rows for the rotation in [start, end],
// restoring base schedule visibility, and re-syncs the range.
func (e *Engine) Remove(ctx context.Context, start, end time.Time, rotation model.Rotation) (int, error) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return 0, fmt.Errorf("override: end %s before start %s", end.Format(model.DateFormat), start.Format(model.DateFormat))
	}
	n, err := e.overrides.DeleteOverrides(ctx, start, end, rotation)
	if err != nil {
		return 0, fmt.Errorf("override: delete rows: %w", err)
	}
	if _, err := e.syncer.SyncRange(ctx, start, end); err != nil {
		e.log.Warnf("override: mirror sync after removal failed: %v", err)
	}
	if e.bus != nil {
		e.bus.Publish(events.OverridesRemoved{Start: start, End: end, Rotation: rotation, Deleted: n})
	}
	if e.journal != nil {
		_ = e.journal.Append(ctx, journal.Record{
			Timestamp: e.now(),
			Kind:      journal.KindRemoval,
			Rotation:  rotation,
			Dates:     []string{start.Format(model.DateFormat), end.Format(model.DateFormat)},
			Deleted:   n,
		})
	}
	e.log.Infof("removed %d override rows for %s between %s and %s",
		n, rotation, start.Format(model.DateFormat), end.Format(model.DateFormat))
	return n, nil
}

// validate enforces the request rules in order, first failure wins.
func (e *Engine) validate(ctx context.Context, req Request) (time.Time, time.Time, model.Engineer, *Result) {
	fail := func(msg string) (time.Time, time.Time, model.Engineer, *Result) {
		r := failure(StageValidated, msg)
		return time.Time{}, time.Time{}, model.Engineer{}, &r
	}

	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		return fail(fmt.Sprintf("invalid start_date %q", req.StartDate))
	}
	end, err := model.ParseDate(req.EndDate)
	if err != nil {
		return fail(fmt.Sprintf("invalid end_date %q", req.EndDate))
	}
	today := model.Day(e.now())
	if start.Before(today) {
		return fail("start_date cannot be in the past")
	}
	if end.Before(start) {
		return fail("end_date cannot be before start_date")
	}
	if end.After(today.AddDate(0, 0, maxHorizonDays)) {
		return fail(fmt.Sprintf("end_date cannot be more than %d days ahead", maxHorizonDays))
	}
	if !strings.Contains(req.Engineer, "@") {
		return fail(fmt.Sprintf("invalid engineer email %q", req.Engineer))
	}
	eng, err := e.directory.Lookup(ctx, req.Engineer)
	if errors.Is(err, store.ErrNotFound) {
		return fail(fmt.Sprintf("engineer %s not found in database", strings.ToLower(req.Engineer)))
	}
	if err != nil {
		r := failure(StagePersisted, fmt.Sprintf("engineer lookup failed: %v", err))
		return time.Time{}, time.Time{}, model.Engineer{}, &r
	}
	if !eng.QualifiedFor(req.Rotation) {
		return fail(fmt.Sprintf("engineer %s not qualified for %s rotation", eng.Key(), req.Rotation))
	}
	return start, end, eng, nil
}

// maybeRegenerate extends the base schedule when the override window
// reaches past the last scheduled date. Failures downgrade to warnings.
func (e *Engine) maybeRegenerate(ctx context.Context, end time.Time) {
	if e.generator == nil {
		return
	}
	var needed int
	last, err := e.schedule.LastScheduledDate(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		needed = int(end.Sub(model.Day(e.now())).Hours()/24) + 1
	case err != nil:
		e.log.Warnf("override: last scheduled date lookup failed: %v", err)
		return
	case end.After(last):
		needed = int(end.Sub(model.Day(last)).Hours() / 24)
	default:
		return
	}
	if needed <= 0 {
		return
	}
	if _, _, err := e.generator.Generate(ctx, needed); err != nil {
		e.log.Warnf("override: schedule regeneration failed (%s): %v", Classify(StageRegenerate), err)
	}
}

// notify messages the new assignee and everyone displaced. Failures are
// collected per recipient and logged, never returned.
func (e *Engine) notify(ctx context.Context, eng model.Engineer, replaced []string, rot model.Rotation, start, end time.Time) {
	window := fmt.Sprintf("%s to %s", start.Format(model.DateFormat), end.Format(model.DateFormat))
	var failures []string
	if err := e.messenger.DirectMessage(ctx, eng.Email,
		fmt.Sprintf("You have been assigned the %s rotation from %s.", rot, window)); err != nil {
		failures = append(failures, eng.Key())
	}
	for _, rep := range replaced {
		if rep == eng.Key() {
			continue
		}
		if err := e.messenger.DirectMessage(ctx, rep,
			fmt.Sprintf("Your %s shifts from %s have been reassigned to %s.", rot, window, eng.Key())); err != nil {
			failures = append(failures, rep)
		}
	}
	if len(failures) > 0 {
		e.log.Warnf("override: %d notification(s) failed: %s", len(failures), strings.Join(failures, ", "))
	}
}

func (e *Engine) observe(req Request, res Result, started time.Time) {
	outcome := "success"
	if !res.Success {
		outcome = string(res.ErrorType)
	}
	overrideRequests.WithLabelValues(outcome).Inc()
	if res.Success {
		overrideDates.Add(float64(len(res.OverriddenDates)))
	}

	ev := metrics.OverrideEvent{
		Rotation:  req.Rotation,
		Dates:     len(res.OverriddenDates),
		Replaced:  len(res.ReplacedEngineers),
		Success:   res.Success,
		ErrorType: string(res.ErrorType),
		Time:      e.now(),
	}
	if len(res.OverriddenDates) > 0 {
		if d, err := model.ParseDate(res.OverriddenDates[0]); err == nil {
			ev.Start = d
		}
		if d, err := model.ParseDate(res.OverriddenDates[len(res.OverriddenDates)-1]); err == nil {
			ev.End = d
		}
	}
	if rec, ok := e.sink.(metrics.OverrideRecorder); ok {
		if err := rec.RecordOverride(ev); err != nil {
			e.log.Errorf("metrics error: %v", err)
		}
	}
	e.log.Debugw("override request finished", map[string]any{
		"outcome":     outcome,
		"dates":       len(res.OverriddenDates),
		"duration_ms": e.now().Sub(started).Milliseconds(),
	})
}

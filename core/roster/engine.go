package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rotaops/rota/core/events"
	"github.com/rotaops/rota/core/journal"
	"github.com/rotaops/rota/core/logger"
	"github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/core/store"
	"github.com/rotaops/rota/internal/eventbus"
)

// ErrNoEngineers is returned when the directory holds no active engineers.
var ErrNoEngineers = errors.New("roster: no active engineers in directory")

// Oracle is the availability surface consulted while filling slots.
type Oracle interface {
	Initialize(ctx context.Context, start, end time.Time)
	IsAvailable(email string, date time.Time) bool
}

type alwaysAvailable struct{}

func (alwaysAvailable) Initialize(context.Context, time.Time, time.Time) {}
func (alwaysAvailable) IsAvailable(string, time.Time) bool               { return true }

// Engine fills the base schedule one representative day per week, then
// fans the day out across its weekdays and persists before advancing, so
// every decision sees the hours of the weeks persisted before it.
type Engine struct {
	directory store.Directory
	schedule  store.ScheduleStore
	ledger    *Ledger
	oracle    Oracle
	sink      metrics.MetricsSink
	bus       eventbus.EventBus
	journal   journal.Store
	log       logger.Logger
	now       func() time.Time
}

// NewEngine wires an Engine. The directory, schedule store and logger are
// required. A nil oracle treats everyone as available, a nil sink
// discards observations and a nil bus skips event publication.
func NewEngine(directory store.Directory, schedule store.ScheduleStore, oracle Oracle, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Engine, error) {
	if directory == nil || schedule == nil {
		return nil, errors.New("roster: directory and schedule store are required")
	}
	if log == nil {
		return nil, errors.New("roster: logger is required")
	}
	if oracle == nil {
		oracle = alwaysAvailable{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{
		directory: directory,
		schedule:  schedule,
		ledger:    NewLedger(schedule),
		oracle:    oracle,
		sink:      sink,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}, nil
}

// SetJournal configures the store used to journal slot decisions.
func (e *Engine) SetJournal(store journal.Store) {
	e.journal = store
}

// Generate builds, persists and returns base assignments covering
// lookaheadDays starting the day after the last scheduled date. The last
// processed week may extend past the window end: a representative day is
// always fanned out through its Friday.
func (e *Engine) Generate(ctx context.Context, lookaheadDays int) ([]model.Assignment, *Report, error) {
	started := e.now()
	if lookaheadDays <= 0 {
		return nil, nil, fmt.Errorf("roster: lookahead days must be positive, got %d", lookaheadDays)
	}

	engineers, err := e.directory.Engineers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("roster: load directory: %w", err)
	}
	if len(engineers) == 0 {
		return nil, nil, ErrNoEngineers
	}

	start, err := e.windowStart(ctx)
	if err != nil {
		return nil, nil, err
	}
	end := start.AddDate(0, 0, lookaheadDays)

	e.oracle.Initialize(ctx, start, end)

	// Lookback scales with team size so everyone has had a chance to
	// rotate through the trailing window.
	daysBack := len(engineers) * 7

	report := newReport(start, end, started)
	var generated []model.Assignment
	for anchor := start; anchor.Before(end); anchor = model.NextMonday(anchor) {
		day, stages, err := e.fillDay(ctx, anchor, engineers, daysBack, report)
		if err != nil {
			return nil, nil, err
		}
		week, err := ExpandWeek(day, anchor)
		if err != nil {
			return nil, nil, err
		}
		if err := e.schedule.SaveAssignments(ctx, week); err != nil {
			return nil, nil, fmt.Errorf("roster: persist week of %s: %w", anchor.Format(model.DateFormat), err)
		}

		evs := make([]metrics.AssignmentEvent, 0, len(week))
		for _, a := range week {
			report.add(a)
			slotsAssigned.WithLabelValues(a.Rotation.String()).Inc()
			evs = append(evs, metrics.AssignmentEvent{
				Date:     a.Date,
				Rotation: a.Rotation,
				Engineer: a.EngineerKey(),
				Fallback: stages[a.Rotation],
				Time:     e.now(),
			})
		}
		if rec, ok := e.sink.(metrics.AssignmentRecorder); ok {
			if err := rec.RecordAssignments(evs); err != nil {
				e.log.Errorf("metrics error: %v", err)
			}
		}
		if e.journal != nil {
			for _, a := range week {
				_ = e.journal.Append(ctx, journal.Record{
					Timestamp: e.now(),
					Kind:      journal.KindAssignment,
					Date:      a.Date.Format(model.DateFormat),
					Rotation:  a.Rotation,
					Engineer:  a.EngineerKey(),
					Stage:     stages[a.Rotation],
				})
			}
		}

		generated = append(generated, week...)
		report.Weeks++
	}
	report.finalize()

	scheduleRuns.Inc()
	runDuration.Observe(e.now().Sub(started).Seconds())
	for key, h := range report.Hours {
		trailingHours.WithLabelValues(key).Set(h)
	}

	forced := report.FallbackCount(FallbackForced)
	e.log.Infof("generated %d assignments over %d weeks (%s..%s), %d forced, %d uncovered",
		report.Assignments, report.Weeks,
		start.Format(model.DateFormat), end.Format(model.DateFormat),
		forced, report.Uncovered)

	if err := e.sink.RecordScheduleRun(metrics.RunResult{
		WindowStart: start,
		WindowEnd:   end,
		Assignments: report.Assignments,
		Weeks:       report.Weeks,
		Relaxed:     report.FallbackCount(FallbackRelaxed),
		Forced:      forced,
		Uncovered:   report.Uncovered,
		MeanHours:   report.MeanHours,
		StddevHours: report.StddevHours,
		Duration:    e.now().Sub(started),
		Time:        e.now(),
	}); err != nil {
		e.log.Errorf("metrics error: %v", err)
	}
	if e.bus != nil {
		e.bus.Publish(events.ScheduleGenerated{
			Start:       start,
			End:         end,
			Assignments: report.Assignments,
			Weeks:       report.Weeks,
			Forced:      forced,
			Uncovered:   report.Uncovered,
		})
	}
	return generated, report, nil
}

// windowStart returns the first date to schedule: the day after the last
// scheduled date, or today when the schedule is empty, advanced to the
// next weekday.
func (e *Engine) windowStart(ctx context.Context) (time.Time, error) {
	last, err := e.schedule.LastScheduledDate(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return model.NextWeekday(model.Day(e.now())), nil
	case err != nil:
		return time.Time{}, fmt.Errorf("roster: last scheduled date: %w", err)
	}
	return model.NextWeekday(model.Day(last).AddDate(0, 0, 1)), nil
}

// fillDay assigns every rotation for one representative day. It returns
// the day's assignments and the fallback stage per rotation ("" for a
// clean pick).
func (e *Engine) fillDay(ctx context.Context, date time.Time, engineers []model.Engineer, daysBack int, report *Report) ([]model.Assignment, map[model.Rotation]string, error) {
	totals, err := e.ledger.TotalHours(ctx, daysBack)
	if err != nil {
		return nil, nil, fmt.Errorf("roster: trailing hours: %w", err)
	}
	trailing, err := e.ledger.Assignments(ctx, daysBack)
	if err != nil {
		return nil, nil, fmt.Errorf("roster: trailing assignments: %w", err)
	}
	previous := previousAssignees(trailing, date)

	var day []model.Assignment
	stages := map[model.Rotation]string{}
	assignedToday := map[string]bool{}
	corePod := ""
	for _, rot := range model.AssignmentOrder {
		pool := qualifiedPool(engineers, rot)
		if len(pool) == 0 {
			e.log.Warnf("no engineers qualified for %s on %s, slot left uncovered", rot, date.Format(model.DateFormat))
			report.Uncovered++
			report.note(Note{Date: date, Rotation: rot, Stage: SlotUncovered, Reason: "no qualified engineers"})
			uncoveredSlots.WithLabelValues(rot.String()).Inc()
			continue
		}
		sortByHours(pool, totals)

		chosen, stage := e.pick(pool, rot, date, previous, assignedToday, corePod)
		key := chosen.Key()
		switch stage {
		case FallbackRelaxed:
			e.log.Warnf("relaxed constraints to fill %s on %s with %s", rot, date.Format(model.DateFormat), key)
			report.note(Note{Date: date, Rotation: rot, Engineer: key, Stage: stage, Reason: "adjacency, double-booking and pod rules relaxed"})
			fallbackAssigned.WithLabelValues(rot.String(), stage).Inc()
		case FallbackForced:
			e.log.Warnf("forced %s into %s on %s despite unavailability", key, rot, date.Format(model.DateFormat))
			report.note(Note{Date: date, Rotation: rot, Engineer: key, Stage: stage, Reason: "least-hours pick ignoring availability"})
			fallbackAssigned.WithLabelValues(rot.String(), stage).Inc()
			if e.bus != nil {
				e.bus.Publish(events.ForcedAssignment{Date: date, Rotation: rot, Engineer: key})
			}
		}

		day = append(day, model.Assignment{Date: date, Rotation: rot, Engineer: chosen.Email})
		stages[rot] = stage
		assignedToday[key] = true
		totals[key] += rot.Hours()
		if rot == model.RotationCore {
			corePod = chosen.Pod
		}
	}
	return day, stages, nil
}

// pick walks the pool in ascending-hours order and returns the first
// candidate passing every rule, falling back in two stages: first
// retrying with only availability enforced, then taking the least-hours
// candidate unconditionally so coverage is never empty.
func (e *Engine) pick(pool []model.Engineer, rot model.Rotation, date time.Time, previous, assignedToday map[string]bool, corePod string) (model.Engineer, string) {
	for _, c := range pool {
		key := c.Key()
		if previous[key] {
			continue
		}
		if assignedToday[key] {
			continue
		}
		if !e.oracle.IsAvailable(c.Email, date) {
			continue
		}
		// Pod collision is only checked for AM/PM against the Core pick.
		if rot != model.RotationCore && corePod != "" && c.Pod == corePod {
			continue
		}
		return c, ""
	}
	for _, c := range pool {
		if e.oracle.IsAvailable(c.Email, date) {
			return c, FallbackRelaxed
		}
	}
	return pool[0], FallbackForced
}

// previousAssignees returns the engineers assigned on the most recent
// date strictly before the given one present in rows.
func previousAssignees(rows []model.Assignment, date time.Time) map[string]bool {
	day := model.Day(date)
	var prev time.Time
	for _, a := range rows {
		d := model.Day(a.Date)
		if d.Before(day) && d.After(prev) {
			prev = d
		}
	}
	out := map[string]bool{}
	if prev.IsZero() {
		return out
	}
	for _, a := range rows {
		if model.Day(a.Date).Equal(prev) {
			out[a.EngineerKey()] = true
		}
	}
	return out
}

// qualifiedPool filters engineers for the rotation, preserving directory
// order.
func qualifiedPool(engineers []model.Engineer, rot model.Rotation) []model.Engineer {
	var pool []model.Engineer
	for _, eng := range engineers {
		if eng.QualifiedFor(rot) {
			pool = append(pool, eng)
		}
	}
	return pool
}

// sortByHours orders the pool ascending by trailing hours. The sort is
// stable so equal totals keep directory order.
func sortByHours(pool []model.Engineer, totals map[string]float64) {
	sort.SliceStable(pool, func(i, j int) bool {
		return totals[pool[i].Key()] < totals[pool[j].Key()]
	})
}

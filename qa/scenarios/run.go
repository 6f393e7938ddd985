package scenarios

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rotaops/rota/core/availability"
	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/core/roster"
	"github.com/rotaops/rota/infra/logger"
	"github.com/rotaops/rota/infra/metrics"
	"github.com/rotaops/rota/infra/store"
	"github.com/rotaops/rota/internal/eventbus"
)

// RunScenario generates a schedule for the scenario roster and checks
// the outcome against its expectations. Structural rules are verified
// on every run regardless of the YAML.
func RunScenario(t *testing.T, sc *Scenario) {
	ctx := context.Background()

	engineers := make([]model.Engineer, len(sc.Engineers))
	byKey := map[string]model.Engineer{}
	for i, def := range sc.Engineers {
		eng, err := def.ToModel()
		if err != nil {
			t.Fatalf("scenario %s: %v", sc.Name, err)
		}
		engineers[i] = eng
		byKey[eng.Key()] = eng
	}

	st := store.NewMemoryStore()
	if err := st.SyncEngineers(ctx, engineers); err != nil {
		t.Fatalf("seed directory: %v", err)
	}

	sink, err := metrics.NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	var oracle roster.Oracle
	if len(sc.OOO) > 0 {
		oracle = availability.NewOracle(staticOOO(sc), logger.NopLogger{})
	}

	bus := eventbus.New()
	defer bus.Close()

	engine, err := roster.NewEngine(st, st, oracle, sink, bus, logger.NopLogger{})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	rows, report, err := engine.Generate(ctx, sc.LookaheadDays)
	if err != nil {
		t.Fatalf("scenario %s: generate: %v", sc.Name, err)
	}

	seen := map[string]bool{}
	distinct := map[string]bool{}
	for _, a := range rows {
		if !model.IsWeekday(a.Date) {
			t.Errorf("assignment on weekend: %s", a.Date.Format(model.DateFormat))
		}
		if seen[a.Key()] {
			t.Errorf("duplicate slot %s", a.Key())
		}
		seen[a.Key()] = true
		holder, ok := byKey[a.EngineerKey()]
		if !ok {
			t.Errorf("unknown assignee %s", a.EngineerKey())
			continue
		}
		if !holder.QualifiedFor(a.Rotation) {
			t.Errorf("%s not qualified for %s on %s", a.EngineerKey(), a.Rotation, a.Date.Format(model.DateFormat))
		}
		distinct[a.EngineerKey()] = true
	}
	if report.Assignments != len(rows) {
		t.Errorf("report counts %d assignments, engine returned %d", report.Assignments, len(rows))
	}

	if sc.Expected.Uncovered && report.Uncovered == 0 {
		t.Errorf("scenario %s expected uncovered slots, got none", sc.Name)
	}
	if !sc.Expected.Uncovered && report.Uncovered > 0 {
		t.Errorf("scenario %s expected full coverage, got %d uncovered", sc.Name, report.Uncovered)
	}
	forced := false
	for _, n := range report.Notes {
		if n.Stage == roster.FallbackForced {
			forced = true
		}
	}
	if forced != sc.Expected.Forced {
		t.Errorf("scenario %s forced=%v, expected %v", sc.Name, forced, sc.Expected.Forced)
	}
	if len(distinct) < sc.Expected.MinEngineers {
		t.Errorf("scenario %s used %d engineers, expected at least %d", sc.Name, len(distinct), sc.Expected.MinEngineers)
	}
}

// staticOOO translates week-indexed absences into dated intervals using
// the same anchor walk the engine performs.
func staticOOO(sc *Scenario) availability.StaticSource {
	start := model.NextWeekday(model.Day(time.Now()))
	end := start.AddDate(0, 0, sc.LookaheadDays)
	var anchors []time.Time
	for a := start; a.Before(end); a = model.NextMonday(a) {
		anchors = append(anchors, a)
	}

	src := availability.StaticSource{}
	for _, ooo := range sc.OOO {
		key := strings.ToLower(ooo.Engineer)
		for _, w := range ooo.Weeks {
			if w < 0 || w >= len(anchors) {
				continue
			}
			src[key] = append(src[key], availability.Interval{
				Start: anchors[w],
				End:   anchors[w].AddDate(0, 0, 4),
			})
		}
	}
	return src
}

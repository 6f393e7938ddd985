package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rotaops/rota/core/model"
	corestore "github.com/rotaops/rota/core/store"
)

var monday = time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)

// each test opens its own shared-cache memory database so state never
// leaks between tests.
func openBackends(t *testing.T, name string) map[string]corestore.Store {
	t.Helper()
	sq, err := NewSQLiteStore(fmt.Sprintf("file:%s.db?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]corestore.Store{
		"sqlite": sq,
		"memory": NewMemoryStore(),
	}
}

func engineer(email, qual, pod string) model.Engineer {
	q, _ := model.ParseRotation(qual)
	return model.Engineer{Email: email, Name: email, Qualification: q, Pod: pod}
}

func TestSyncAndLookup(t *testing.T) {
	for name, s := range openBackends(t, "sync") {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			roster := []model.Engineer{
				engineer("Alice@X.io", "am", "alpha"),
				engineer("bob@x.io", "pm", "beta"),
				engineer("charlie@x.io", "am", "alpha"),
			}
			if err := s.SyncEngineers(ctx, roster); err != nil {
				t.Fatalf("sync: %v", err)
			}

			got, err := s.Engineers(ctx)
			if err != nil {
				t.Fatalf("engineers: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("expected 3 engineers, got %d", len(got))
			}
			// Directory order is insertion order.
			if got[0].Key() != "alice@x.io" || got[2].Key() != "charlie@x.io" {
				t.Fatalf("order lost: %v", got)
			}

			e, err := s.Lookup(ctx, "ALICE@x.io")
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			if e.Qualification != model.RotationAM || e.Pod != "alpha" {
				t.Fatalf("lookup returned %+v", e)
			}
			if _, err := s.Lookup(ctx, "nobody@x.io"); !errors.Is(err, corestore.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			// Re-sync without bob soft-deletes him.
			if err := s.SyncEngineers(ctx, roster[:1]); err != nil {
				t.Fatalf("second sync: %v", err)
			}
			if _, err := s.Lookup(ctx, "bob@x.io"); !errors.Is(err, corestore.ErrNotFound) {
				t.Fatalf("deleted engineer still resolvable: %v", err)
			}
			got, _ = s.Engineers(ctx)
			if len(got) != 1 {
				t.Fatalf("expected 1 active engineer, got %d", len(got))
			}

			// An empty roster must not wipe the directory.
			if err := s.SyncEngineers(ctx, nil); err != nil {
				t.Fatalf("empty sync: %v", err)
			}
			got, _ = s.Engineers(ctx)
			if len(got) != 1 {
				t.Fatalf("empty sync changed the directory: %d", len(got))
			}
		})
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	for name, s := range openBackends(t, "sched") {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := s.LastScheduledDate(ctx); !errors.Is(err, corestore.ErrNotFound) {
				t.Fatalf("empty store should report ErrNotFound, got %v", err)
			}

			rows := []model.Assignment{
				{Date: monday, Rotation: model.RotationCore, Engineer: "alice@x.io"},
				{Date: monday, Rotation: model.RotationAM, Engineer: "bob@x.io"},
				{Date: monday.AddDate(0, 0, 1), Rotation: model.RotationCore, Engineer: "bob@x.io"},
			}
			if err := s.SaveAssignments(ctx, rows); err != nil {
				t.Fatalf("save: %v", err)
			}

			last, err := s.LastScheduledDate(ctx)
			if err != nil {
				t.Fatalf("last: %v", err)
			}
			if !last.Equal(monday.AddDate(0, 0, 1)) {
				t.Fatalf("last = %s", last)
			}

			// Upsert replaces the engineer for an existing slot.
			if err := s.SaveAssignments(ctx, []model.Assignment{
				{Date: monday, Rotation: model.RotationCore, Engineer: "charlie@x.io"},
			}); err != nil {
				t.Fatalf("upsert: %v", err)
			}
			got, err := s.AssignmentsInRange(ctx, monday, monday)
			if err != nil {
				t.Fatalf("range: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 rows on monday, got %d", len(got))
			}
			// am sorts before core within a day.
			if got[0].Rotation != model.RotationAM || got[1].EngineerKey() != "charlie@x.io" {
				t.Fatalf("rows = %+v", got)
			}

			if err := s.Reset(ctx); err != nil {
				t.Fatalf("reset: %v", err)
			}
			if _, err := s.LastScheduledDate(ctx); !errors.Is(err, corestore.ErrNotFound) {
				t.Fatal("reset left assignments behind")
			}
		})
	}
}

func TestHistoricalWindowIncludesFutureRows(t *testing.T) {
	today := model.Day(time.Now())
	for name, s := range openBackends(t, "hist") {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rows := []model.Assignment{
				{Date: today.AddDate(0, 0, -10), Rotation: model.RotationCore, Engineer: "old@x.io"},
				{Date: today.AddDate(0, 0, -2), Rotation: model.RotationCore, Engineer: "recent@x.io"},
				{Date: today.AddDate(0, 0, 3), Rotation: model.RotationCore, Engineer: "future@x.io"},
			}
			if err := s.SaveAssignments(ctx, rows); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := s.HistoricalAssignments(ctx, 7)
			if err != nil {
				t.Fatalf("historical: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 rows in window, got %d", len(got))
			}
			if got[0].EngineerKey() != "recent@x.io" || got[1].EngineerKey() != "future@x.io" {
				t.Fatalf("window = %+v", got)
			}
		})
	}
}

func TestOverrideLifecycle(t *testing.T) {
	for name, s := range openBackends(t, "ovr") {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := []model.Assignment{
				{Date: monday, Rotation: model.RotationCore, Engineer: "bob@x.io"},
				{Date: monday.AddDate(0, 0, 1), Rotation: model.RotationCore, Engineer: "dave@x.io"},
			}
			if err := s.SaveAssignments(ctx, base); err != nil {
				t.Fatalf("seed: %v", err)
			}
			if err := s.UpsertOverrides(ctx, []model.Override{
				{Date: monday, Rotation: model.RotationCore, Engineer: "charlie@x.io"},
			}); err != nil {
				t.Fatalf("upsert override: %v", err)
			}

			// Displaced lookup prefers the override on monday, the base row
			// on tuesday, and skips the empty wednesday.
			dates := []time.Time{monday, monday.AddDate(0, 0, 1), monday.AddDate(0, 0, 2)}
			displaced, err := s.FindDisplacedEngineers(ctx, dates, model.RotationCore)
			if err != nil {
				t.Fatalf("displaced: %v", err)
			}
			if len(displaced) != 2 || displaced[0] != "charlie@x.io" || displaced[1] != "dave@x.io" {
				t.Fatalf("displaced = %v", displaced)
			}

			eff, err := s.Effective(ctx, monday, monday.AddDate(0, 0, 1))
			if err != nil {
				t.Fatalf("effective: %v", err)
			}
			if len(eff) != 2 || eff[0].EngineerKey() != "charlie@x.io" {
				t.Fatalf("effective = %+v", eff)
			}

			// Deletion is scoped by rotation.
			n, err := s.DeleteOverrides(ctx, monday, monday.AddDate(0, 0, 4), model.RotationAM)
			if err != nil || n != 0 {
				t.Fatalf("am delete removed %d (%v)", n, err)
			}
			n, err = s.DeleteOverrides(ctx, monday, monday.AddDate(0, 0, 4), model.RotationCore)
			if err != nil || n != 1 {
				t.Fatalf("core delete removed %d (%v)", n, err)
			}
			eff, _ = s.Effective(ctx, monday, monday)
			if len(eff) != 1 || eff[0].EngineerKey() != "bob@x.io" {
				t.Fatalf("base visibility not restored: %+v", eff)
			}
		})
	}
}

func TestRepairRemovesInvalidRows(t *testing.T) {
	saturday := monday.AddDate(0, 0, 5)
	for name, s := range openBackends(t, "repair") {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.SaveAssignments(ctx, []model.Assignment{
				{Date: monday, Rotation: model.RotationCore, Engineer: "alice@x.io"},
				{Date: saturday, Rotation: model.RotationCore, Engineer: "weekend@x.io"},
				{Date: monday, Rotation: model.RotationPM, Engineer: ""},
			}); err != nil {
				t.Fatalf("seed: %v", err)
			}
			if err := s.Repair(ctx); err != nil {
				t.Fatalf("repair: %v", err)
			}
			got, err := s.AssignmentsInRange(ctx, monday, saturday)
			if err != nil {
				t.Fatalf("range: %v", err)
			}
			if len(got) != 1 || got[0].EngineerKey() != "alice@x.io" {
				t.Fatalf("repair kept %+v", got)
			}
		})
	}
}

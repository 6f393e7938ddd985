package test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rotaops/rota/core/journal"
	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/core/override"
	"github.com/rotaops/rota/core/roster"
	"github.com/rotaops/rota/infra/logger"
	"github.com/rotaops/rota/infra/store"
)

type recordingMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMessenger) DirectMessage(_ context.Context, email, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, strings.ToLower(email))
	return nil
}

func (m *recordingMessenger) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func TestOverrideFlowSQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := store.NewSQLiteStore(filepath.Join(dir, "rota.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()

	if err := st.SyncEngineers(ctx, bench()); err != nil {
		t.Fatalf("seed engineers: %v", err)
	}
	rosterEng, err := roster.NewEngine(st, st, nil, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("roster engine: %v", err)
	}
	rows, _, err := rosterEng.Generate(ctx, 14)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	journalPath := filepath.Join(dir, "journal.log")
	jstore, err := journal.NewJSONLStore(journalPath)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	defer func() {
		_ = jstore.Close()
	}()

	msgr := &recordingMessenger{}
	ovr, err := override.NewEngine(st, st, st, rosterEng, nil, msgr, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("override engine: %v", err)
	}
	ovr.SetJournal(jstore)

	// Reassign a PM slot to the other PM engineer.
	var target model.Assignment
	for _, a := range rows {
		if a.Rotation == model.RotationPM {
			target = a
			break
		}
	}
	if target.Engineer == "" {
		t.Fatal("no pm assignment generated")
	}
	replacement := "bob@example.com"
	if target.EngineerKey() == replacement {
		replacement = "dave@example.com"
	}
	date := target.Date.Format(model.DateFormat)

	res := ovr.Apply(ctx, override.Request{
		Engineer:  replacement,
		Rotation:  model.RotationPM,
		StartDate: date,
		EndDate:   date,
	})
	if !res.Success {
		t.Fatalf("override rejected: %s (%s)", res.Error, res.ErrorType)
	}
	if len(res.ReplacedEngineers) != 1 || res.ReplacedEngineers[0] != target.EngineerKey() {
		t.Errorf("replaced = %v, want [%s]", res.ReplacedEngineers, target.EngineerKey())
	}

	eff, err := st.Effective(ctx, target.Date, target.Date)
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	for _, a := range eff {
		if a.Rotation == model.RotationPM && a.EngineerKey() != replacement {
			t.Errorf("effective pm assignee = %s, want %s", a.EngineerKey(), replacement)
		}
	}

	// Both the new assignee and the displaced engineer were notified.
	recipients := msgr.recipients()
	if len(recipients) != 2 {
		t.Fatalf("expected 2 notifications, got %v", recipients)
	}
	if recipients[0] != replacement || recipients[1] != target.EngineerKey() {
		t.Errorf("unexpected recipients %v", recipients)
	}

	// The decision is journaled.
	recs, err := jstore.Query(ctx, journal.Query{Kind: journal.KindOverride})
	if err != nil {
		t.Fatalf("journal query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 journal record, got %d", len(recs))
	}
	if recs[0].Engineer != replacement || len(recs[0].Dates) != 1 {
		t.Errorf("unexpected journal record %+v", recs[0])
	}
	if _, err := os.Stat(journalPath); err != nil {
		t.Errorf("journal file missing: %v", err)
	}

	// Removal restores the base assignee.
	n, err := ovr.Remove(ctx, target.Date, target.Date, model.RotationPM)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed %d rows, want 1", n)
	}
	eff, err = st.Effective(ctx, target.Date, target.Date)
	if err != nil {
		t.Fatalf("effective after removal: %v", err)
	}
	for _, a := range eff {
		if a.Rotation == model.RotationPM && a.EngineerKey() != target.EngineerKey() {
			t.Errorf("base assignee not restored, got %s", a.EngineerKey())
		}
	}
}

func TestOverridePastDateRejected(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "rota.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	if err := st.SyncEngineers(ctx, bench()); err != nil {
		t.Fatalf("seed engineers: %v", err)
	}
	ovr, err := override.NewEngine(st, st, st, nil, nil, nil, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("override engine: %v", err)
	}

	yesterday := model.Day(time.Now()).AddDate(0, 0, -1).Format(model.DateFormat)
	res := ovr.Apply(ctx, override.Request{
		Engineer:  "alice@example.com",
		Rotation:  model.RotationAM,
		StartDate: yesterday,
		EndDate:   yesterday,
	})
	if res.Success {
		t.Fatal("past-dated override accepted")
	}
	if res.ErrorType != override.ErrTypeValidation {
		t.Errorf("error type = %s, want validation", res.ErrorType)
	}
}

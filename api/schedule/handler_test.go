package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotaops/rota/core/model"
)

type fakeView struct {
	rows []model.Assignment
	err  error

	start, end time.Time
}

func (f *fakeView) Effective(_ context.Context, start, end time.Time) ([]model.Assignment, error) {
	f.start, f.end = start, end
	return f.rows, f.err
}

type fakeOverrides struct {
	rows []model.Override
}

func (f *fakeOverrides) OverridesInRange(context.Context, time.Time, time.Time) ([]model.Override, error) {
	return f.rows, nil
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func TestScheduleHandler(t *testing.T) {
	view := &fakeView{rows: []model.Assignment{
		{Date: date(t, "2026-03-02"), Rotation: model.RotationAM, Engineer: "Alice@example.com"},
		{Date: date(t, "2026-03-02"), Rotation: model.RotationCore, Engineer: "bob@example.com"},
	}}
	h := NewScheduleHandler(view)

	req := httptest.NewRequest(http.MethodGet, "/api/schedule?start=2026-03-02&end=2026-03-06", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !view.start.Equal(date(t, "2026-03-02")) || !view.end.Equal(date(t, "2026-03-06")) {
		t.Errorf("window = %v..%v", view.start, view.end)
	}
	var out []slotOut
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("rows = %d", len(out))
	}
	if out[0].Engineer != "alice@example.com" || out[0].Rotation != "am" || out[0].Date != "2026-03-02" {
		t.Errorf("unexpected first row %+v", out[0])
	}
}

func TestScheduleHandlerBadDate(t *testing.T) {
	h := NewScheduleHandler(&fakeView{})
	req := httptest.NewRequest(http.MethodGet, "/api/schedule?start=03/02/2026", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestScheduleHandlerStoreError(t *testing.T) {
	h := NewScheduleHandler(&fakeView{err: errors.New("boom")})
	req := httptest.NewRequest(http.MethodGet, "/api/schedule", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestOverridesHandler(t *testing.T) {
	h := NewOverridesHandler(&fakeOverrides{rows: []model.Override{
		{Date: date(t, "2026-03-03"), Rotation: model.RotationPM, Engineer: "carol@example.com"},
	}})
	req := httptest.NewRequest(http.MethodGet, "/api/overrides", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out []slotOut
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Rotation != "pm" {
		t.Fatalf("rows = %+v", out)
	}
}

func TestSummaryHandler(t *testing.T) {
	view := &fakeView{rows: []model.Assignment{
		{Date: date(t, "2026-03-02"), Rotation: model.RotationAM, Engineer: "alice@example.com"},
		{Date: date(t, "2026-03-02"), Rotation: model.RotationCore, Engineer: "alice@example.com"},
		{Date: date(t, "2026-03-02"), Rotation: model.RotationPM, Engineer: "bob@example.com"},
	}}
	h := NewSummaryHandler(view)
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out []engineerSummary
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("entries = %d", len(out))
	}
	// Sorted by engineer, so alice first.
	if out[0].Engineer != "alice@example.com" || out[0].Hours != 9 || out[0].Shifts != 2 {
		t.Errorf("alice summary = %+v", out[0])
	}
	if out[0].MeanShiftHours != 4.5 {
		t.Errorf("mean = %v, want 4.5", out[0].MeanShiftHours)
	}
	if out[1].Engineer != "bob@example.com" || out[1].Hours != 3 {
		t.Errorf("bob summary = %+v", out[1])
	}
}

func TestSummaryHandlerMethod(t *testing.T) {
	h := NewSummaryHandler(&fakeView{})
	req := httptest.NewRequest(http.MethodPost, "/api/summary", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

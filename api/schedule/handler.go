package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/rotaops/rota/core/model"
)

// View reads the effective schedule, overrides applied.
type View interface {
	Effective(ctx context.Context, start, end time.Time) ([]model.Assignment, error)
}

// OverrideReader lists raw override rows.
type OverrideReader interface {
	OverridesInRange(ctx context.Context, start, end time.Time) ([]model.Override, error)
}

type slotOut struct {
	Date     string `json:"date"`
	Rotation string `json:"rotation"`
	Engineer string `json:"engineer"`
}

// window parses start/end query parameters, defaulting to the next 14 days.
func window(r *http.Request) (time.Time, time.Time, error) {
	start := model.Day(time.Now())
	end := start.AddDate(0, 0, 13)
	var err error
	if s := r.URL.Query().Get("start"); s != "" {
		if start, err = model.ParseDate(s); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if s := r.URL.Query().Get("end"); s != "" {
		if end, err = model.ParseDate(s); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// NewScheduleHandler exposes the effective schedule via GET /api/schedule.
func NewScheduleHandler(view View) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		start, end, err := window(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rows, err := view.Effective(r.Context(), start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]slotOut, len(rows))
		for i, a := range rows {
			out[i] = slotOut{
				Date:     a.Date.Format(model.DateFormat),
				Rotation: a.Rotation.String(),
				Engineer: a.EngineerKey(),
			}
		}
		writeJSON(w, out)
	})
}

// NewOverridesHandler exposes override rows via GET /api/overrides.
func NewOverridesHandler(store OverrideReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		start, end, err := window(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rows, err := store.OverridesInRange(r.Context(), start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]slotOut, len(rows))
		for i, o := range rows {
			out[i] = slotOut{
				Date:     o.Date.Format(model.DateFormat),
				Rotation: o.Rotation.String(),
				Engineer: o.EngineerKey(),
			}
		}
		writeJSON(w, out)
	})
}

type engineerSummary struct {
	Engineer       string  `json:"engineer"`
	Hours          float64 `json:"hours"`
	Shifts         int     `json:"shifts"`
	MeanShiftHours float64 `json:"mean_shift_hours"`
}

// NewSummaryHandler exposes per-engineer workload totals over the window
// via GET /api/summary. Totals are computed on the effective schedule, so
// overrides count against the engineer actually holding the slot.
func NewSummaryHandler(view View) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		start, end, err := window(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rows, err := view.Effective(r.Context(), start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		totals := map[string]*engineerSummary{}
		for _, a := range rows {
			key := a.EngineerKey()
			s, ok := totals[key]
			if !ok {
				s = &engineerSummary{Engineer: key}
				totals[key] = s
			}
			s.Hours += a.Rotation.Hours()
			s.Shifts++
		}
		out := make([]engineerSummary, 0, len(totals))
		for _, s := range totals {
			if s.Shifts > 0 {
				s.MeanShiftHours = s.Hours / float64(s.Shifts)
			}
			out = append(out, *s)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Engineer < out[j].Engineer })
		writeJSON(w, out)
	})
}

package journal

import (
	"encoding/json"
	"net/http"
	"time"

	corejournal "github.com/rotaops/rota/core/journal"
	"github.com/rotaops/rota/core/model"
)

// NewLogHandler returns an HTTP handler exposing the decision journal via
// GET /api/journal. Unknown filter values are ignored rather than rejected.
func NewLogHandler(store corejournal.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := corejournal.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := parseTime(s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := parseTime(s); err == nil {
				q.End = t
			}
		}
		q.Engineer = r.URL.Query().Get("engineer")
		if k := r.URL.Query().Get("kind"); k != "" {
			if v, ok := kindFromString(k); ok {
				q.Kind = v
			}
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// parseTime accepts RFC3339 timestamps and plain schedule dates.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return model.ParseDate(s)
}

func kindFromString(s string) (corejournal.Kind, bool) {
	switch s {
	case "assignment":
		return corejournal.KindAssignment, true
	case "override":
		return corejournal.KindOverride, true
	case "removal":
		return corejournal.KindRemoval, true
	default:
		return "", false
	}
}

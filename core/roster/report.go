package roster

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/rotaops/rota/core/model"
)

// Stages recorded on report notes and fallback metrics.
const (
	FallbackRelaxed = "relaxed"
	FallbackForced  = "forced"
	SlotUncovered   = "uncovered"
)

// Note flags a slot the engine could not fill under the normal rules.
type Note struct {
	Date     time.Time      `json:"date"`
	Rotation model.Rotation `json:"rotation"`
	Engineer string         `json:"engineer,omitempty"`
	Stage    string         `json:"stage"`
	Reason   string         `json:"reason"`
}

// Report summarises one generation run. Diagnostic only: nothing in the
// schedule depends on it.
type Report struct {
	WindowStart time.Time          `json:"window_start"`
	WindowEnd   time.Time          `json:"window_end"`
	GeneratedAt time.Time          `json:"generated_at"`
	Weeks       int                `json:"weeks"`
	Assignments int                `json:"assignments"`
	Uncovered   int                `json:"uncovered"`
	Counts      map[string]int     `json:"counts"`
	Hours       map[string]float64 `json:"hours"`
	Notes       []Note             `json:"notes,omitempty"`
	MeanHours   float64            `json:"mean_hours"`
	StddevHours float64            `json:"stddev_hours"`
}

func newReport(start, end, at time.Time) *Report {
	return &Report{
		WindowStart: start,
		WindowEnd:   end,
		GeneratedAt: at,
		Counts:      map[string]int{},
		Hours:       map[string]float64{},
	}
}

func (r *Report) add(a model.Assignment) {
	key := a.EngineerKey()
	r.Assignments++
	r.Counts[key]++
	r.Hours[key] += a.Rotation.Hours()
}

func (r *Report) note(n Note) {
	r.Notes = append(r.Notes, n)
}

// finalize computes the spread statistics over per-engineer hour totals.
// Engineers with zero assignments in the window do not contribute.
func (r *Report) finalize() {
	if len(r.Hours) == 0 {
		return
	}
	totals := make([]float64, 0, len(r.Hours))
	for _, h := range r.Hours {
		totals = append(totals, h)
	}
	sort.Float64s(totals)
	r.MeanHours = stat.Mean(totals, nil)
	if len(totals) > 1 {
		r.StddevHours = stat.StdDev(totals, nil)
	}
}

// FallbackCount returns how many notes carry the given stage.
func (r *Report) FallbackCount(stage string) int {
	n := 0
	for _, note := range r.Notes {
		if note.Stage == stage {
			n++
		}
	}
	return n
}

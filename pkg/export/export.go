// Package export renders effective schedule windows for external
// consumers, typically payroll and staffing reviews.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotaops/rota/core/model"
)

type row struct {
	Date     string  `json:"date"`
	Rotation string  `json:"rotation"`
	Engineer string  `json:"engineer"`
	Hours    float64 `json:"hours"`
}

func rows(assignments []model.Assignment) []row {
	out := make([]row, len(assignments))
	for i, a := range assignments {
		out[i] = row{
			Date:     a.Date.Format(model.DateFormat),
			Rotation: a.Rotation.String(),
			Engineer: a.EngineerKey(),
			Hours:    a.Rotation.Hours(),
		}
	}
	return out
}

// WriteJSON writes the schedule window to w as a JSON array.
func WriteJSON(w io.Writer, assignments []model.Assignment) error {
	return json.NewEncoder(w).Encode(rows(assignments))
}

// WriteCSV writes the schedule window to w in CSV format.
func WriteCSV(w io.Writer, assignments []model.Assignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "rotation", "engineer", "hours"}); err != nil {
		return err
	}
	for _, r := range rows(assignments) {
		rec := []string{r.Date, r.Rotation, r.Engineer, strconv.FormatFloat(r.Hours, 'f', -1, 64)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package roster

import (
	"fmt"
	"time"

	"github.com/rotaops/rota/core/model"
)

// ExpandWeek replicates one scheduled day across the rest of its work
// week. Each (engineer, rotation) pair on the anchor day is copied onto
// every weekday from the anchor through that week's Friday, so an anchor
// already on Friday expands to itself. The anchor must be a weekday and
// every input assignment must be dated on it.
func ExpandWeek(day []model.Assignment, anchor time.Time) ([]model.Assignment, error) {
	anchor = model.Day(anchor)
	if !model.IsWeekday(anchor) {
		return nil, fmt.Errorf("expand week: anchor %s is not a weekday", anchor.Format(model.DateFormat))
	}
	for _, a := range day {
		if !model.Day(a.Date).Equal(anchor) {
			return nil, fmt.Errorf("expand week: assignment dated %s does not match anchor %s",
				a.Date.Format(model.DateFormat), anchor.Format(model.DateFormat))
		}
	}

	friday := model.WeekFriday(anchor)
	var out []model.Assignment
	for d := anchor; !d.After(friday); d = d.AddDate(0, 0, 1) {
		for _, a := range day {
			out = append(out, model.Assignment{Date: d, Rotation: a.Rotation, Engineer: a.Engineer})
		}
	}
	model.SortAssignments(out)
	return out, nil
}

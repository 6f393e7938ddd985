package availability

import (
	"context"
	"time"

	"github.com/rotaops/rota/core/model"
)

// StaticSource serves a fixed out-of-office table, keyed by engineer
// email. Used for rehearsal scenarios and as a calendar stand-in.
type StaticSource map[string][]Interval

// Intervals returns the table entries overlapping [start, end].
func (s StaticSource) Intervals(_ context.Context, start, end time.Time) (map[string][]Interval, error) {
	start, end = model.Day(start), model.Day(end)
	out := make(map[string][]Interval, len(s))
	for email, ivs := range s {
		for _, iv := range ivs {
			if model.Day(iv.End).Before(start) || model.Day(iv.Start).After(end) {
				continue
			}
			out[email] = append(out[email], iv)
		}
	}
	return out, nil
}

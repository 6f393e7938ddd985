// Package availability answers "is this engineer out of office on this
// date". The oracle is fail-open: when the upstream source cannot be
// reached it reports everyone as available rather than blocking schedule
// generation.
package availability

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotaops/rota/core/logger"
	"github.com/rotaops/rota/core/model"
)

// Interval is a closed out-of-office date range. Both ends are inclusive.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls inside the interval.
func (iv Interval) Contains(d time.Time) bool {
	d = model.Day(d)
	return !d.Before(model.Day(iv.Start)) && !d.After(model.Day(iv.End))
}

// Source fetches out-of-office intervals per engineer email for a window.
type Source interface {
	Intervals(ctx context.Context, start, end time.Time) (map[string][]Interval, error)
}

// Oracle caches one window of out-of-office intervals, keyed by lowercased
// engineer email.
type Oracle struct {
	source Source
	log    logger.Logger

	mu          sync.RWMutex
	initialized bool
	start, end  time.Time
	intervals   map[string][]Interval
}

func NewOracle(source Source, log logger.Logger) *Oracle {
	return &Oracle{source: source, log: log, intervals: map[string][]Interval{}}
}

// Initialize fetches intervals for [start, end] and replaces any prior
// window. A source failure leaves the oracle empty but initialized, so
// every availability check passes.
func (o *Oracle) Initialize(ctx context.Context, start, end time.Time) {
	start, end = model.Day(start), model.Day(end)

	index := map[string][]Interval{}
	if o.source != nil {
		fetched, err := o.source.Intervals(ctx, start, end)
		if err != nil {
			o.log.Warnf("availability: source fetch failed, treating all engineers as available: %v", err)
		} else {
			for email, ivs := range fetched {
				key := strings.ToLower(strings.TrimSpace(email))
				if key == "" || len(ivs) == 0 {
					continue
				}
				sorted := make([]Interval, len(ivs))
				copy(sorted, ivs)
				sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
				index[key] = sorted
			}
		}
	}

	o.mu.Lock()
	o.initialized = true
	o.start, o.end = start, end
	o.intervals = index
	o.mu.Unlock()

	o.log.Debugw("availability window initialized", map[string]any{
		"start":     start.Format(model.DateFormat),
		"end":       end.Format(model.DateFormat),
		"engineers": len(index),
	})
}

// IsAvailable reports whether the engineer can be scheduled on date. It
// returns true when the oracle is uninitialized, the date falls outside
// the fetched window, or no interval covers the date.
func (o *Oracle) IsAvailable(email string, date time.Time) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !o.initialized {
		return true
	}
	d := model.Day(date)
	if d.Before(o.start) || d.After(o.end) {
		return true
	}
	for _, iv := range o.intervals[strings.ToLower(strings.TrimSpace(email))] {
		if iv.Contains(d) {
			return false
		}
	}
	return true
}

// UnavailableOn lists engineers with an interval covering date, sorted.
func (o *Oracle) UnavailableOn(date time.Time) []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !o.initialized {
		return nil
	}
	d := model.Day(date)
	var out []string
	for email, ivs := range o.intervals {
		for _, iv := range ivs {
			if iv.Contains(d) {
				out = append(out, email)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Clear drops the cached window, returning the oracle to its
// uninitialized, always-available state.
func (o *Oracle) Clear() {
	o.mu.Lock()
	o.initialized = false
	o.start, o.end = time.Time{}, time.Time{}
	o.intervals = map[string][]Interval{}
	o.mu.Unlock()
}

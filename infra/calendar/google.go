package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/rotaops/rota/core/availability"
	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/infra/logger"
)

// GoogleSource implements the availability Source over a shared Google
// Calendar holding out-of-office events.
type GoogleSource struct {
	svc        *calendar.Service
	calendarID string
	matcher    *Matcher
	log        logger.Logger
	maxRetries int
	backoff    time.Duration
}

// NewGoogleSource builds the service client and the title matcher for the
// given engineer directory.
func NewGoogleSource(ctx context.Context, cfg Config, engineers []model.Engineer) (*GoogleSource, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := time.Duration(cfg.BackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &GoogleSource{
		svc:        svc,
		calendarID: cfg.CalendarID,
		matcher:    NewMatcher(engineers),
		log:        logger.New("calendar"),
		maxRetries: maxRetries,
		backoff:    backoff,
	}, nil
}

// Intervals lists events in [start, end] and returns out-of-office
// intervals keyed by engineer identity. Events whose title cannot be
// matched to the directory are skipped with a debug log.
func (g *GoogleSource) Intervals(ctx context.Context, start, end time.Time) (map[string][]availability.Interval, error) {
	events, err := g.listEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]availability.Interval)
	for _, ev := range events {
		key, ok := g.matcher.Match(ev.Summary)
		if !ok {
			g.log.Debugf("calendar: no engineer matched for event %q", ev.Summary)
			continue
		}
		iv, err := eventInterval(ev)
		if err != nil {
			g.log.Warnf("calendar: skipping event %q: %v", ev.Summary, err)
			continue
		}
		out[key] = append(out[key], iv)
	}
	return out, nil
}

func (g *GoogleSource) listEvents(ctx context.Context, start, end time.Time) ([]*calendar.Event, error) {
	call := func() ([]*calendar.Event, error) {
		var events []*calendar.Event
		err := g.svc.Events.List(g.calendarID).
			TimeMin(model.Day(start).Format(time.RFC3339)).
			TimeMax(model.Day(end).AddDate(0, 0, 1).Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Pages(ctx, func(page *calendar.Events) error {
				events = append(events, page.Items...)
				return nil
			})
		return events, err
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		events, err := call()
		if err == nil {
			return events, nil
		}
		lastErr = err
		g.log.Warnf("calendar: list attempt %d failed: %v", attempt+1, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.backoff * time.Duration(1<<attempt)):
		}
	}
	return nil, fmt.Errorf("calendar list: %w", lastErr)
}

// eventInterval converts an event to an inclusive day range. All-day events
// carry an exclusive end date; timed events ending exactly at midnight do
// not cover that day.
func eventInterval(ev *calendar.Event) (availability.Interval, error) {
	if ev.Start == nil || ev.End == nil {
		return availability.Interval{}, fmt.Errorf("event has no time bounds")
	}
	if ev.Start.Date != "" {
		start, err := model.ParseDate(ev.Start.Date)
		if err != nil {
			return availability.Interval{}, fmt.Errorf("bad start date: %w", err)
		}
		end, err := model.ParseDate(ev.End.Date)
		if err != nil {
			return availability.Interval{}, fmt.Errorf("bad end date: %w", err)
		}
		return availability.Interval{Start: start, End: end.AddDate(0, 0, -1)}, nil
	}

	start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return availability.Interval{}, fmt.Errorf("bad start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return availability.Interval{}, fmt.Errorf("bad end time: %w", err)
	}
	endDay := model.Day(end)
	if end.Equal(endDay) {
		endDay = endDay.AddDate(0, 0, -1)
	}
	return availability.Interval{Start: model.Day(start), End: endDay}, nil
}

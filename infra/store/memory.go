package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotaops/rota/core/model"
	corestore "github.com/rotaops/rota/core/store"
)

// MemoryStore keeps the whole schedule in process memory. It backs tests
// and scenario runs; nothing survives a restart.
type MemoryStore struct {
	mu          sync.RWMutex
	engineers   []model.Engineer
	assignments map[string]model.Assignment
	overrides   map[string]model.Override

	// Clock supplies "today" for trailing-window reads. Tests pin it.
	Clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assignments: make(map[string]model.Assignment),
		overrides:   make(map[string]model.Override),
		Clock:       time.Now,
	}
}

func (s *MemoryStore) Engineers(ctx context.Context) ([]model.Engineer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Engineer
	for _, e := range s.engineers {
		if !e.Deleted {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) Lookup(ctx context.Context, email string) (model.Engineer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := model.Engineer{Email: email}.Key()
	for _, e := range s.engineers {
		if e.Key() == key && !e.Deleted {
			return e, nil
		}
	}
	return model.Engineer{}, corestore.ErrNotFound
}

func (s *MemoryStore) SyncEngineers(ctx context.Context, roster []model.Engineer) error {
	if len(roster) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	present := make(map[string]bool, len(roster))
	for _, e := range roster {
		present[e.Key()] = true
		found := false
		for i := range s.engineers {
			if s.engineers[i].Key() == e.Key() {
				s.engineers[i] = e
				found = true
				break
			}
		}
		if !found {
			s.engineers = append(s.engineers, e)
		}
	}
	for i := range s.engineers {
		if !present[s.engineers[i].Key()] {
			s.engineers[i].Deleted = true
		}
	}
	return nil
}

func (s *MemoryStore) LastScheduledDate(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last time.Time
	for _, a := range s.assignments {
		if d := model.Day(a.Date); d.After(last) {
			last = d
		}
	}
	if last.IsZero() {
		return time.Time{}, corestore.ErrNotFound
	}
	return last, nil
}

func (s *MemoryStore) HistoricalAssignments(ctx context.Context, daysBack int) ([]model.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := model.Day(s.Clock()).AddDate(0, 0, -daysBack)
	var out []model.Assignment
	for _, a := range s.assignments {
		if !model.Day(a.Date).Before(cutoff) {
			out = append(out, a)
		}
	}
	model.SortAssignments(out)
	return out, nil
}

func (s *MemoryStore) SaveAssignments(ctx context.Context, rows []model.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range rows {
		a.Date = model.Day(a.Date)
		s.assignments[a.Key()] = a
	}
	return nil
}

func (s *MemoryStore) AssignmentsInRange(ctx context.Context, start, end time.Time) ([]model.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lo, hi := model.Day(start), model.Day(end)
	var out []model.Assignment
	for _, a := range s.assignments {
		d := model.Day(a.Date)
		if !d.Before(lo) && !d.After(hi) {
			out = append(out, a)
		}
	}
	model.SortAssignments(out)
	return out, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = make(map[string]model.Assignment)
	return nil
}

func (s *MemoryStore) UpsertOverrides(ctx context.Context, rows []model.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range rows {
		o.Date = model.Day(o.Date)
		s.overrides[o.Key()] = o
	}
	return nil
}

func (s *MemoryStore) OverridesInRange(ctx context.Context, start, end time.Time) ([]model.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lo, hi := model.Day(start), model.Day(end)
	var out []model.Override
	for _, o := range s.overrides {
		d := model.Day(o.Date)
		if !d.Before(lo) && !d.After(hi) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Rotation < out[j].Rotation
	})
	return out, nil
}

func (s *MemoryStore) FindDisplacedEngineers(ctx context.Context, dates []time.Time, rotation model.Rotation) ([]string, error) {
	return findDisplaced(ctx, s, dates, rotation)
}

func (s *MemoryStore) DeleteOverrides(ctx context.Context, start, end time.Time, rotation model.Rotation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lo, hi := model.Day(start), model.Day(end)
	n := 0
	for key, o := range s.overrides {
		d := model.Day(o.Date)
		if o.Rotation == rotation && !d.Before(lo) && !d.After(hi) {
			delete(s.overrides, key)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Effective(ctx context.Context, start, end time.Time) ([]model.Assignment, error) {
	return effective(ctx, s, start, end)
}

func (s *MemoryStore) Repair(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, a := range s.assignments {
		if !model.IsWeekday(a.Date) || a.Engineer == "" {
			delete(s.assignments, key)
		}
	}
	for key, o := range s.overrides {
		if !model.IsWeekday(o.Date) || o.Engineer == "" {
			delete(s.overrides, key)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

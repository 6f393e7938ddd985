package workload

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore stores records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add inserts or updates the record aggregated by day and engineer.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(r.Engineer)
	if s.data[key] == nil {
		s.data[key] = map[time.Time]*Record{}
	}
	d := Day(r.Date)
	rec := s.data[key][d]
	if rec == nil {
		rec = &Record{Engineer: key, Date: d}
		s.data[key][d] = rec
	}
	rec.Hours += r.Hours
	rec.Shifts += r.Shifts
	return nil
}

// Query returns records between start and end inclusive.
func (s *MemoryStore) Query(engineer string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start = Day(start)
	end = Day(end)
	var res []Record
	for d, r := range s.data[strings.ToLower(engineer)] {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}

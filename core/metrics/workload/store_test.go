package workload

import (
	"testing"
	"time"
)

func TestMemoryStore_Aggregation(t *testing.T) {
	s := NewMemoryStore()
	d := Day(time.Now())
	if err := s.Add(Record{Engineer: "alice@example.com", Date: d, Hours: 6, Shifts: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(Record{Engineer: "Alice@Example.com", Date: d.Add(2 * time.Hour), Hours: 3, Shifts: 1}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	recs, err := s.Query("alice@example.com", d, d)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].Hours != 9 || recs[0].Shifts != 2 {
		t.Fatalf("expected 9h/2 shifts got %f/%d", recs[0].Hours, recs[0].Shifts)
	}
}

func TestMemoryStore_QueryRange(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := s.Add(Record{Engineer: "bob@example.com", Date: base.AddDate(0, 0, i), Hours: 3, Shifts: 1}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	recs, err := s.Query("bob@example.com", base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records got %d", len(recs))
	}
	if !recs[0].Date.Equal(base.AddDate(0, 0, 1)) {
		t.Fatalf("records not sorted by date: %v", recs[0].Date)
	}
}

func TestRecordMeanShiftHours(t *testing.T) {
	r := Record{Hours: 12, Shifts: 3}
	if r.MeanShiftHours() != 4 {
		t.Fatalf("mean shift hours: got %f", r.MeanShiftHours())
	}
	if (Record{}).MeanShiftHours() != 0 {
		t.Fatalf("empty record should report zero")
	}
}

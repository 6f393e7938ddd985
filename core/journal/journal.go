package journal

import (
	"context"
	"strings"
	"time"

	"github.com/rotaops/rota/core/model"
)

// Kind classifies a journal record.
type Kind string

const (
	// KindAssignment records one persisted schedule slot.
	KindAssignment Kind = "assignment"
	// KindOverride records an applied override window.
	KindOverride Kind = "override"
	// KindRemoval records a deleted override window.
	KindRemoval Kind = "removal"
)

// Record captures one scheduling decision and its outcome.
type Record struct {
	Timestamp time.Time      `json:"timestamp"`
	Kind      Kind           `json:"kind"`
	Date      string         `json:"date,omitempty"`
	Rotation  model.Rotation `json:"rotation"`
	Engineer  string         `json:"engineer,omitempty"`
	Stage     string         `json:"stage,omitempty"`
	Dates     []string       `json:"dates,omitempty"`
	Replaced  []string       `json:"replaced,omitempty"`
	Deleted   int            `json:"deleted,omitempty"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start    time.Time
	End      time.Time
	Engineer string
	Kind     Kind
}

// matches reports whether rec passes every filter set on q. Timestamp
// bounds are inclusive. The engineer filter also matches records where
// the engineer appears as a replaced party.
func (q Query) matches(rec Record) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.Kind != "" && rec.Kind != q.Kind {
		return false
	}
	if q.Engineer != "" {
		if strings.EqualFold(rec.Engineer, q.Engineer) {
			return true
		}
		for _, r := range rec.Replaced {
			if strings.EqualFold(r, q.Engineer) {
				return true
			}
		}
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

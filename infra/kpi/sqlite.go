// Package kpi persists per-engineer workload aggregates in SQLite.
package kpi

import (
	"database/sql"
	"strings"
	"time"

	core "github.com/rotaops/rota/core/metrics/workload"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists workload records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS workload_kpi (
        engineer TEXT,
        day INTEGER,
        hours REAL,
        shifts INTEGER,
        PRIMARY KEY(engineer, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or updates the workload record aggregated by day and engineer.
func (s *SQLiteStore) Add(r core.Record) error {
	d := core.Day(r.Date)
	_, err := s.db.Exec(`INSERT INTO workload_kpi (engineer, day, hours, shifts)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(engineer, day) DO UPDATE SET
            hours = hours + excluded.hours,
            shifts = shifts + excluded.shifts`,
		strings.ToLower(r.Engineer), d.Unix(), r.Hours, r.Shifts)
	return err
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(engineer string, start, end time.Time) ([]core.Record, error) {
	start = core.Day(start)
	end = core.Day(end)
	rows, err := s.db.Query(`SELECT engineer, day, hours, shifts
        FROM workload_kpi WHERE engineer = ? AND day >= ? AND day <= ? ORDER BY day`,
		strings.ToLower(engineer), start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var eng string
		var ts int64
		var hours float64
		var shifts int
		if err := rows.Scan(&eng, &ts, &hours, &shifts); err != nil {
			return nil, err
		}
		res = append(res, core.Record{
			Engineer: eng,
			Date:     time.Unix(ts, 0).UTC(),
			Hours:    hours,
			Shifts:   shifts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

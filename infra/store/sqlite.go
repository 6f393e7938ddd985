package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rotaops/rota/core/model"
	corestore "github.com/rotaops/rota/core/store"
)

// sqliteSchema is run statement by statement: the driver rejects
// multi-statement Exec calls.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS engineers (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        email TEXT NOT NULL UNIQUE,
        name TEXT NOT NULL DEFAULT '',
        qualification TEXT NOT NULL,
        pod TEXT NOT NULL DEFAULT '',
        deleted INTEGER NOT NULL DEFAULT 0
    );`,
	`CREATE TABLE IF NOT EXISTS assignments (
        date INTEGER NOT NULL,
        rotation TEXT NOT NULL,
        engineer TEXT NOT NULL,
        PRIMARY KEY (date, rotation)
    );`,
	`CREATE TABLE IF NOT EXISTS overrides (
        date INTEGER NOT NULL,
        rotation TEXT NOT NULL,
        engineer TEXT NOT NULL,
        PRIMARY KEY (date, rotation)
    );`,
}

// SQLiteStore persists the schedule in a SQLite database. Dates are
// stored as Unix seconds of their UTC midnight.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Engineers(ctx context.Context) ([]model.Engineer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, name, qualification, pod FROM engineers WHERE deleted = 0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.Engineer
	for rows.Next() {
		var e model.Engineer
		var qual string
		if err := rows.Scan(&e.Email, &e.Name, &qual, &e.Pod); err != nil {
			return nil, err
		}
		if e.Qualification, err = model.ParseRotation(qual); err != nil {
			return nil, fmt.Errorf("engineer %s: %w", e.Email, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Lookup(ctx context.Context, email string) (model.Engineer, error) {
	var e model.Engineer
	var qual string
	err := s.db.QueryRowContext(ctx,
		`SELECT email, name, qualification, pod FROM engineers WHERE email = ? AND deleted = 0`,
		strings.ToLower(email)).Scan(&e.Email, &e.Name, &qual, &e.Pod)
	if err == sql.ErrNoRows {
		return model.Engineer{}, corestore.ErrNotFound
	}
	if err != nil {
		return model.Engineer{}, err
	}
	if e.Qualification, err = model.ParseRotation(qual); err != nil {
		return model.Engineer{}, fmt.Errorf("engineer %s: %w", e.Email, err)
	}
	return e, nil
}

// SyncEngineers upserts the roster and soft-deletes everyone missing from
// it. An empty roster is a no-op so a broken upstream read cannot wipe
// the directory.
func (s *SQLiteStore) SyncEngineers(ctx context.Context, roster []model.Engineer) error {
	if len(roster) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	keys := make([]any, 0, len(roster))
	for _, e := range roster {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO engineers (email, name, qualification, pod, deleted)
             VALUES (?, ?, ?, ?, ?)
             ON CONFLICT(email) DO UPDATE SET
                 name = excluded.name,
                 qualification = excluded.qualification,
                 pod = excluded.pod,
                 deleted = excluded.deleted`,
			e.Key(), e.Name, e.Qualification.String(), e.Pod, boolToInt(e.Deleted)); err != nil {
			return err
		}
		keys = append(keys, e.Key())
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	if _, err := tx.ExecContext(ctx,
		`UPDATE engineers SET deleted = 1 WHERE email NOT IN (`+marks+`)`, keys...); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) LastScheduledDate(ctx context.Context) (time.Time, error) {
	var ts sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM assignments`).Scan(&ts); err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, corestore.ErrNotFound
	}
	return time.Unix(ts.Int64, 0).UTC(), nil
}

func (s *SQLiteStore) HistoricalAssignments(ctx context.Context, daysBack int) ([]model.Assignment, error) {
	cutoff := model.Day(time.Now()).AddDate(0, 0, -daysBack)
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, rotation, engineer FROM assignments WHERE date >= ? ORDER BY date`,
		cutoff.Unix())
	if err != nil {
		return nil, err
	}
	return scanAssignments(rows)
}

func (s *SQLiteStore) SaveAssignments(ctx context.Context, rows []model.Assignment) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, a := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assignments (date, rotation, engineer) VALUES (?, ?, ?)
             ON CONFLICT(date, rotation) DO UPDATE SET engineer = excluded.engineer`,
			model.Day(a.Date).Unix(), a.Rotation.String(), a.Engineer); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) AssignmentsInRange(ctx context.Context, start, end time.Time) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, rotation, engineer FROM assignments WHERE date >= ? AND date <= ? ORDER BY date`,
		model.Day(start).Unix(), model.Day(end).Unix())
	if err != nil {
		return nil, err
	}
	return scanAssignments(rows)
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM assignments`)
	return err
}

func (s *SQLiteStore) UpsertOverrides(ctx context.Context, rows []model.Override) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, o := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO overrides (date, rotation, engineer) VALUES (?, ?, ?)
             ON CONFLICT(date, rotation) DO UPDATE SET engineer = excluded.engineer`,
			model.Day(o.Date).Unix(), o.Rotation.String(), o.Engineer); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) OverridesInRange(ctx context.Context, start, end time.Time) ([]model.Override, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, rotation, engineer FROM overrides WHERE date >= ? AND date <= ? ORDER BY date`,
		model.Day(start).Unix(), model.Day(end).Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.Override
	for rows.Next() {
		var ts int64
		var rot, engineer string
		if err := rows.Scan(&ts, &rot, &engineer); err != nil {
			return nil, err
		}
		r, err := model.ParseRotation(rot)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Override{Date: time.Unix(ts, 0).UTC(), Rotation: r, Engineer: engineer})
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FindDisplacedEngineers(ctx context.Context, dates []time.Time, rotation model.Rotation) ([]string, error) {
	return findDisplaced(ctx, s, dates, rotation)
}

func (s *SQLiteStore) DeleteOverrides(ctx context.Context, start, end time.Time, rotation model.Rotation) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM overrides WHERE date >= ? AND date <= ? AND rotation = ?`,
		model.Day(start).Unix(), model.Day(end).Unix(), rotation.String())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Effective(ctx context.Context, start, end time.Time) ([]model.Assignment, error) {
	return effective(ctx, s, start, end)
}

// Repair re-runs schema creation and deletes rows a healthy schedule
// never contains: weekend dates and empty engineer references.
func (s *SQLiteStore) Repair(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	for _, table := range []string{"assignments", "overrides"} {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE CAST(strftime('%w', date, 'unixepoch') AS INTEGER) IN (0, 6)`); err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE engineer = ''`); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func scanAssignments(rows *sql.Rows) ([]model.Assignment, error) {
	defer func() { _ = rows.Close() }()
	var out []model.Assignment
	for rows.Next() {
		var ts int64
		var rot, engineer string
		if err := rows.Scan(&ts, &rot, &engineer); err != nil {
			return nil, err
		}
		r, err := model.ParseRotation(rot)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Assignment{Date: time.Unix(ts, 0).UTC(), Rotation: r, Engineer: engineer})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	model.SortAssignments(out)
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

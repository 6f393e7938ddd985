package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/rotaops/rota/core/model"
	corestore "github.com/rotaops/rota/core/store"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS engineers (
        id SERIAL PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        name TEXT NOT NULL DEFAULT '',
        qualification TEXT NOT NULL,
        pod TEXT NOT NULL DEFAULT '',
        deleted BOOLEAN NOT NULL DEFAULT FALSE
    );`,
	`CREATE TABLE IF NOT EXISTS assignments (
        date BIGINT NOT NULL,
        rotation TEXT NOT NULL,
        engineer TEXT NOT NULL,
        PRIMARY KEY (date, rotation)
    );`,
	`CREATE TABLE IF NOT EXISTS overrides (
        date BIGINT NOT NULL,
        rotation TEXT NOT NULL,
        engineer TEXT NOT NULL,
        PRIMARY KEY (date, rotation)
    );`,
}

// PostgresStore persists the schedule in PostgreSQL. Same logical schema
// as the SQLite backend, with dates as Unix seconds of UTC midnight.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects with the given DSN and ensures schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Engineers(ctx context.Context) ([]model.Engineer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, name, qualification, pod FROM engineers WHERE NOT deleted ORDER BY id`)
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

func (s *PostgresStore) Lookup(ctx context.Context, email string) (model.Engineer, error) {
	var e model.Engineer
	var qual string
	err := s.db.QueryRowContext(ctx,
		`SELECT email, name, qualification, pod FROM engineers WHERE email = $1 AND NOT deleted`,
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

func (s *PostgresStore) SyncEngineers(ctx context.Context, roster []model.Engineer) error {
	if len(roster) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	keys := make([]string, 0, len(roster))
	for _, e := range roster {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO engineers (email, name, qualification, pod, deleted)
             VALUES ($1, $2, $3, $4, $5)
             ON CONFLICT (email) DO UPDATE SET
                 name = EXCLUDED.name,
                 qualification = EXCLUDED.qualification,
                 pod = EXCLUDED.pod,
                 deleted = EXCLUDED.deleted`,
			e.Key(), e.Name, e.Qualification.String(), e.Pod, e.Deleted); err != nil {
			return err
		}
		keys = append(keys, e.Key())
	}
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = k
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE engineers SET deleted = TRUE WHERE email NOT IN (`+strings.Join(marks, ",")+`)`,
		args...); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) LastScheduledDate(ctx context.Context) (time.Time, error) {
	var ts sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM assignments`).Scan(&ts); err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, corestore.ErrNotFound
	}
	return time.Unix(ts.Int64, 0).UTC(), nil
}

func (s *PostgresStore) HistoricalAssignments(ctx context.Context, daysBack int) ([]model.Assignment, error) {
	cutoff := model.Day(time.Now()).AddDate(0, 0, -daysBack)
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, rotation, engineer FROM assignments WHERE date >= $1 ORDER BY date`,
		cutoff.Unix())
	if err != nil {
		return nil, err
	}
	return scanAssignments(rows)
}

func (s *PostgresStore) SaveAssignments(ctx context.Context, rows []model.Assignment) error {
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
			`INSERT INTO assignments (date, rotation, engineer) VALUES ($1, $2, $3)
             ON CONFLICT (date, rotation) DO UPDATE SET engineer = EXCLUDED.engineer`,
			model.Day(a.Date).Unix(), a.Rotation.String(), a.Engineer); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) AssignmentsInRange(ctx context.Context, start, end time.Time) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, rotation, engineer FROM assignments WHERE date >= $1 AND date <= $2 ORDER BY date`,
		model.Day(start).Unix(), model.Day(end).Unix())
	if err != nil {
		return nil, err
	}
	return scanAssignments(rows)
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM assignments`)
	return err
}

func (s *PostgresStore) UpsertOverrides(ctx context.Context, rows []model.Override) error {
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
			`INSERT INTO overrides (date, rotation, engineer) VALUES ($1, $2, $3)
             ON CONFLICT (date, rotation) DO UPDATE SET engineer = EXCLUDED.engineer`,
			model.Day(o.Date).Unix(), o.Rotation.String(), o.Engineer); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) OverridesInRange(ctx context.Context, start, end time.Time) ([]model.Override, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, rotation, engineer FROM overrides WHERE date >= $1 AND date <= $2 ORDER BY date`,
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

func (s *PostgresStore) FindDisplacedEngineers(ctx context.Context, dates []time.Time, rotation model.Rotation) ([]string, error) {
	return findDisplaced(ctx, s, dates, rotation)
}

func (s *PostgresStore) DeleteOverrides(ctx context.Context, start, end time.Time, rotation model.Rotation) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM overrides WHERE date >= $1 AND date <= $2 AND rotation = $3`,
		model.Day(start).Unix(), model.Day(end).Unix(), rotation.String())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *PostgresStore) Effective(ctx context.Context, start, end time.Time) ([]model.Assignment, error) {
	return effective(ctx, s, start, end)
}

func (s *PostgresStore) Repair(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	for _, table := range []string{"assignments", "overrides"} {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE EXTRACT(DOW FROM to_timestamp(date)) IN (0, 6)`); err != nil {
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
func (s *PostgresStore) Close() error { return s.db.Close() }

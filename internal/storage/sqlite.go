//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/mpcsim/internal/metrics"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, meta RunMetadata, samples []metrics.Sample) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}

	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			payload = excluded.payload
	`, meta.ID, meta.Timestamp.UnixNano(), payload); err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM samples WHERE run_id = ?`, meta.ID); err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (run_id, seq, step, agent, x, y, heading, cost, goal_dist, action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, sample := range samples {
		if _, err := stmt.ExecContext(ctx, meta.ID, i, sample.Step, sample.Agent,
			sample.Pose[0], sample.Pose[1], sample.Pose[2],
			sample.Cost, sample.GoalDist, formatAction(sample.Action)); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]RunMetadata, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM runs ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var meta RunMetadata
		if err := json.Unmarshal(payload, &meta); err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*RunMetadata, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &meta, nil
}

func (s *SQLiteStore) LoadTrajectory(ctx context.Context, id string) ([]metrics.Sample, error) {
	if _, err := s.Load(ctx, id); err != nil {
		return nil, err
	}

	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT step, agent, x, y, heading, cost, goal_dist, action
		FROM samples WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := make([]metrics.Sample, 0)
	for rows.Next() {
		var (
			sample metrics.Sample
			action string
		)
		if err := rows.Scan(&sample.Step, &sample.Agent,
			&sample.Pose[0], &sample.Pose[1], &sample.Pose[2],
			&sample.Cost, &sample.GoalDist, &action); err != nil {
			return nil, err
		}
		if sample.Action, err = parseAction(action); err != nil {
			return nil, fmt.Errorf("decode action of run %s: %w", id, err)
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			step INTEGER NOT NULL,
			agent INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			heading REAL NOT NULL,
			cost REAL NOT NULL,
			goal_dist REAL NOT NULL,
			action TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/relabs-tech/jump_counter/internal/calibration"
	"github.com/relabs-tech/jump_counter/internal/session"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	confidence REAL NOT NULL,
	data BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	device TEXT NOT NULL,
	jump_count INTEGER NOT NULL,
	data BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions (started_at);
`

// SQLiteStore keeps profiles and sessions in one SQLite database. The full
// record is stored as JSON next to the columns used for ordering.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ ProfileStore = (*SQLiteStore)(nil)
	_ SessionStore = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (and creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite at %q: %w", path, err)
	}
	// one connection avoids "database is locked"
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: open sqlite at %q: %w. Ensure the directory is writable", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create tables: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, p calibration.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("store: marshal profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, created_at, confidence, data) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET created_at = excluded.created_at, confidence = excluded.confidence, data = excluded.data`,
		p.ID.String(), p.CreatedAt.UnixNano(), p.Confidence, data)
	if err != nil {
		return fmt.Errorf("store: save profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadProfile(ctx context.Context, id uuid.UUID) (calibration.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE id = ?`, id.String())
	return scanProfile(row)
}

func (s *SQLiteStore) LatestProfile(ctx context.Context) (calibration.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM profiles ORDER BY created_at DESC LIMIT 1`)
	return scanProfile(row)
}

func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]calibration.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []calibration.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("store: delete profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveSession(ctx context.Context, sum session.Summary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("store: marshal session: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, device, jump_count, data) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET started_at = excluded.started_at, device = excluded.device,
			jump_count = excluded.jump_count, data = excluded.data`,
		sum.ID.String(), sum.StartedAt.UnixNano(), sum.Device, sum.JumpCount, data)
	if err != nil {
		return fmt.Errorf("store: save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSession(ctx context.Context, id uuid.UUID) (session.Summary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id = ?`, id.String())
	return scanSession(row)
}

func (s *SQLiteStore) ListSessions(ctx context.Context, limit int) ([]session.Summary, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []session.Summary
	for rows.Next() {
		sum, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (calibration.Profile, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return calibration.Profile{}, ErrNotFound
		}
		return calibration.Profile{}, fmt.Errorf("store: read profile: %w", err)
	}
	var p calibration.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return calibration.Profile{}, fmt.Errorf("store: decode profile: %w", err)
	}
	return p, nil
}

func scanSession(row scanner) (session.Summary, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Summary{}, ErrNotFound
		}
		return session.Summary{}, fmt.Errorf("store: read session: %w", err)
	}
	var sum session.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return session.Summary{}, fmt.Errorf("store: decode session: %w", err)
	}
	return sum, nil
}

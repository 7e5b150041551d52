// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store persists calibration profiles and session summaries.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/relabs-tech/jump_counter/internal/calibration"
	"github.com/relabs-tech/jump_counter/internal/session"
)

// ErrNotFound is returned when a profile or session does not exist.
var ErrNotFound = errors.New("not found")

// ProfileStore persists calibration profiles.
type ProfileStore interface {
	SaveProfile(ctx context.Context, p calibration.Profile) error
	LoadProfile(ctx context.Context, id uuid.UUID) (calibration.Profile, error)
	// LatestProfile returns the most recently created profile.
	LatestProfile(ctx context.Context) (calibration.Profile, error)
	ListProfiles(ctx context.Context) ([]calibration.Profile, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	Close() error
}

// SessionStore persists session summaries.
type SessionStore interface {
	SaveSession(ctx context.Context, s session.Summary) error
	LoadSession(ctx context.Context, id uuid.UUID) (session.Summary, error)
	// ListSessions returns the newest sessions first. limit <= 0 means all.
	ListSessions(ctx context.Context, limit int) ([]session.Summary, error)
}

// Backend names a storage implementation.
type Backend string

const (
	JSONBackend   Backend = "json"
	SQLiteBackend Backend = "sqlite"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case JSONBackend, SQLiteBackend:
		return Backend(s), nil
	}
	return "", fmt.Errorf("unsupported profile backend: %s. Must be json or sqlite", s)
}

// Open returns the profile store for a backend. For JSONBackend path is a
// directory, for SQLiteBackend a database file.
func Open(backend Backend, path string) (ProfileStore, error) {
	switch backend {
	case JSONBackend:
		fs, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case SQLiteBackend:
		db, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("unsupported profile backend: %s. Must be json or sqlite", backend)
}

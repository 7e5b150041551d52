// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/relabs-tech/jump_counter/internal/calibration"
)

// FileStore keeps one JSON file per profile in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var _ ProfileStore = (*FileStore)(nil)

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create profile directory %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id uuid.UUID) string {
	return filepath.Join(s.dir, "profile_"+id.String()+".json")
}

// SaveProfile writes the profile atomically, replacing one with the same ID.
func (s *FileStore) SaveProfile(_ context.Context, p calibration.Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".profile-*.tmp")
	if err != nil {
		return fmt.Errorf("store: write profile: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store: write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store: write profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(p.ID)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store: write profile: %w", err)
	}
	return nil
}

func (s *FileStore) LoadProfile(_ context.Context, id uuid.UUID) (calibration.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(s.path(id))
}

func (s *FileStore) read(path string) (calibration.Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return calibration.Profile{}, ErrNotFound
	}
	if err != nil {
		return calibration.Profile{}, fmt.Errorf("store: read profile: %w", err)
	}
	var p calibration.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return calibration.Profile{}, fmt.Errorf("store: decode %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// ListProfiles returns all profiles, newest first.
func (s *FileStore) ListProfiles(_ context.Context) ([]calibration.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list profiles: %w", err)
	}
	var out []calibration.Profile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "profile_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		p, err := s.read(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FileStore) LatestProfile(ctx context.Context) (calibration.Profile, error) {
	all, err := s.ListProfiles(ctx)
	if err != nil {
		return calibration.Profile{}, err
	}
	if len(all) == 0 {
		return calibration.Profile{}, ErrNotFound
	}
	return all[0], nil
}

func (s *FileStore) DeleteProfile(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: delete profile: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

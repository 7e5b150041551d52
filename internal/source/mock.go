// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"time"

	"github.com/relabs-tech/jump_counter/internal/motion"
)

type mockSource struct {
	start time.Time
	jump  []motion.Sample
	now   func() time.Time
}

// NewMockSource creates a mock motion source that loops one scripted jump
// forever, timestamped with wall-clock seconds since creation.
func NewMockSource() motion.Source {
	return newMockSource(time.Now)
}

func newMockSource(now func() time.Time) *mockSource {
	return &mockSource{
		start: now(),
		jump:  Synthetic{Jumps: 1}.Samples(),
		now:   now,
	}
}

func (m *mockSource) Next() (motion.Sample, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	// pick the scripted sample for this point of the 0.6 s cycle
	idx := int(elapsed/0.01) % len(m.jump)
	s := m.jump[idx]
	s.Timestamp = elapsed
	return s, nil
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package session turns the accepted jumps of one workout into counts,
// rates and breaks.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Config controls rate sampling and break classification. Durations are seconds.
type Config struct {
	RateWindow float64 // trailing window for jumps per minute
	RateStep   float64 // spacing of rate points
	SmallBreak float64 // minimum gap counted as a small break
	LongBreak  float64 // minimum gap counted as a long break
}

// DefaultConfig returns 10 s rate windows sampled every second, 3 s small
// breaks and 10 s long breaks.
func DefaultConfig() Config {
	return Config{
		RateWindow: 10,
		RateStep:   1,
		SmallBreak: 3,
		LongBreak:  10,
	}
}

// RatePoint is the jump rate at one moment of the session.
type RatePoint struct {
	SecondsFromStart float64 `json:"seconds_from_start"`
	Rate             float64 `json:"rate"` // jumps per minute
}

// Summary describes a finished session.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Device    string    `json:"device,omitempty"`

	Duration    float64     `json:"duration"` // seconds
	JumpCount   int         `json:"jump_count"`
	Jumps       []float64   `json:"jumps"` // seconds from start
	RatePoints  []RatePoint `json:"rate_points"`
	PeakRate    float64     `json:"peak_rate"`
	AverageRate float64     `json:"average_rate"`
	SmallBreaks int         `json:"small_breaks"`
	LongBreaks  int         `json:"long_breaks"`
}

// Intervals returns the gaps between consecutive jumps.
func (s Summary) Intervals() []float64 {
	return intervals(s.Jumps)
}

func intervals(jumps []float64) []float64 {
	if len(jumps) < 2 {
		return nil
	}
	out := make([]float64, len(jumps)-1)
	for i := 1; i < len(jumps); i++ {
		out[i-1] = jumps[i] - jumps[i-1]
	}
	return out
}

// Summarize computes a summary from jump times relative to the session start.
// jumps must be ascending.
func Summarize(jumps []float64, duration float64, cfg Config) Summary {
	s := Summary{
		Duration:  duration,
		JumpCount: len(jumps),
		Jumps:     append([]float64(nil), jumps...),
	}
	if duration > 0 {
		s.AverageRate = float64(len(jumps)) / duration * 60
	}

	for _, gap := range intervals(jumps) {
		switch {
		case gap >= cfg.LongBreak:
			s.LongBreaks++
		case gap >= cfg.SmallBreak:
			s.SmallBreaks++
		}
	}

	if cfg.RateStep > 0 {
		for t := cfg.RateStep; t <= duration+1e-9; t += cfg.RateStep {
			p := RatePoint{SecondsFromStart: t, Rate: rateAt(jumps, t, cfg.RateWindow)}
			s.RatePoints = append(s.RatePoints, p)
			s.PeakRate = max(s.PeakRate, p.Rate)
		}
	}
	return s
}

// rateAt counts jumps in (t-window, t] and scales to jumps per minute. Early
// in the session the window shrinks to the elapsed time.
func rateAt(jumps []float64, t, window float64) float64 {
	w := min(window, t)
	if w <= 0 {
		return 0
	}
	n := 0
	for _, j := range jumps {
		if j > t-w && j <= t {
			n++
		}
	}
	return float64(n) / w * 60
}

// Tracker accumulates jumps during a live session. Times are in sample
// seconds, the same clock as the detector results.
type Tracker struct {
	cfg   Config
	start float64
	wall  time.Time
	jumps []float64
	last  float64
}

// NewTracker starts a session at sample time start.
func NewTracker(cfg Config, start float64, wall time.Time) *Tracker {
	return &Tracker{cfg: cfg, start: start, wall: wall, last: start}
}

// AddJump records an accepted jump.
func (t *Tracker) AddJump(ts float64) {
	t.jumps = append(t.jumps, ts-t.start)
	t.Observe(ts)
}

// Observe moves the session clock forward without a jump.
func (t *Tracker) Observe(ts float64) {
	if ts > t.last {
		t.last = ts
	}
}

// Count returns the number of jumps so far.
func (t *Tracker) Count() int { return len(t.jumps) }

// Elapsed returns the session duration so far.
func (t *Tracker) Elapsed() float64 { return t.last - t.start }

// Rate returns the current jumps per minute over the trailing window.
func (t *Tracker) Rate() float64 {
	return rateAt(t.jumps, t.Elapsed(), t.cfg.RateWindow)
}

// Summary summarises the session so far.
func (t *Tracker) Summary() Summary {
	s := Summarize(t.jumps, t.Elapsed(), t.cfg)
	s.ID = uuid.New()
	s.StartedAt = t.wall
	return s
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"io"
	"math"
	"math/rand"

	"github.com/relabs-tech/jump_counter/internal/motion"
)

// Segment is a run of identical samples inside one synthetic jump.
type Segment struct {
	Name  string
	Count int
	AX    float64
	AY    float64
}

// DefaultJump is one 0.6 s rope jump at 100 Hz: 2.0 g takeoff with 1.8 g on
// the vertical axis, 1.8 g landing.
func DefaultJump() []Segment {
	return []Segment{
		{Name: "ground", Count: 18},
		{Name: "compression", Count: 10, AY: -0.4},
		{Name: "takeoff", Count: 8, AX: math.Sqrt(4.0 - 1.8*1.8), AY: 1.8},
		{Name: "flight", Count: 10, AX: 0.1},
		{Name: "landing", Count: 6, AX: math.Sqrt(1.8*1.8 - 1.2*1.2), AY: 1.2},
		{Name: "ground", Count: 8},
	}
}

// JumpLength returns the number of samples in one jump.
func JumpLength(jump []Segment) int {
	n := 0
	for _, s := range jump {
		n += s.Count
	}
	return n
}

// Synthetic describes a scripted jump session.
type Synthetic struct {
	Jumps      int
	Jump       []Segment // DefaultJump when nil
	LeadIn     int       // quiet samples before the first jump
	Trail      int       // quiet samples after the last jump
	Period     float64   // seconds, 0.01 when zero
	Start      float64   // timestamp of the first sample
	NoiseSigma float64   // gaussian noise added to every axis
	Seed       int64
}

// Samples renders the whole session.
func (s Synthetic) Samples() []motion.Sample {
	jump := s.Jump
	if jump == nil {
		jump = DefaultJump()
	}
	period := s.Period
	if period <= 0 {
		period = 0.01
	}
	rng := rand.New(rand.NewSource(s.Seed))
	noise := func() float64 {
		if s.NoiseSigma == 0 {
			return 0
		}
		return rng.NormFloat64() * s.NoiseSigma
	}

	total := s.LeadIn + s.Jumps*JumpLength(jump) + s.Trail
	out := make([]motion.Sample, 0, total)
	emit := func(ax, ay float64) {
		out = append(out, motion.Sample{
			AX:        ax + noise(),
			AY:        ay + noise(),
			AZ:        noise(),
			Timestamp: s.Start + float64(len(out))*period,
		})
	}

	for range s.LeadIn {
		emit(0, 0)
	}
	for range s.Jumps {
		for _, seg := range jump {
			for range seg.Count {
				emit(seg.AX, seg.AY)
			}
		}
	}
	for range s.Trail {
		emit(0, 0)
	}
	return out
}

// Slice serves a fixed list of samples and then io.EOF.
type Slice struct {
	samples []motion.Sample
	pos     int
}

// NewSlice creates a Source over samples.
func NewSlice(samples []motion.Sample) *Slice {
	return &Slice{samples: samples}
}

func (s *Slice) Next() (motion.Sample, error) {
	if s.pos >= len(s.samples) {
		return motion.Sample{}, io.EOF
	}
	sample := s.samples[s.pos]
	s.pos++
	return sample, nil
}

// Remaining returns how many samples are left.
func (s *Slice) Remaining() int { return len(s.samples) - s.pos }

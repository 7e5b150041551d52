// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package detector

import (
	"github.com/relabs-tech/jump_counter/internal/filter"
	"github.com/relabs-tech/jump_counter/internal/motion"
)

// Fixed phase thresholds in g. The takeoff threshold and both timeouts come
// from Parameters.
const (
	compressionVertical = -0.2 // ground -> compression, vertical below
	compressionTotal    = 0.8  // ground -> compression, total below
	flightTotal         = 0.5  // takeoff -> flight, total below
	landingTotal        = 1.0  // flight -> landing, total above
	landingVertical     = 0.5  // flight -> landing, vertical above
	groundTotal         = 1.2  // landing -> ground, total below

	// The filter bank only runs once the buffer holds more than this many values.
	minFilterSamples = 10
)

type stepOutcome int

const (
	stepNone stepOutcome = iota
	stepChanged
	stepTimeout
	stepEvaluate
)

// PhaseMachine detects jumps by tracking the five-phase jump cycle on the
// filtered total acceleration and the raw vertical component.
type PhaseMachine struct {
	params    Parameters
	bank      filter.Bank
	buf       *filter.Ring
	filtered  []float64
	validator *Validator
	gate      *gate

	phase      Phase
	phaseStart float64
	jumpStart  float64
	log        []Phase

	rejected int
}

// NewPhaseMachine creates a phase machine with its own debounce state.
// Parameters must already be validated.
func NewPhaseMachine(p Parameters) *PhaseMachine {
	return newPhaseMachine(p, &gate{interval: p.DebounceTime})
}

func newPhaseMachine(p Parameters, g *gate) *PhaseMachine {
	bank := filter.NewBank()
	bank.SamplePeriod = p.SamplePeriod
	return &PhaseMachine{
		params:    p,
		bank:      bank,
		buf:       filter.NewRing(p.BufferSize),
		validator: NewValidator(p),
		gate:      g,
		log:       make([]Phase, 0, len(Template)),
	}
}

// Process feeds one sample. Only a landing -> ground transition can produce
// a jump.
func (m *PhaseMachine) Process(s motion.Sample) Result {
	total := m.filter(s.Magnitude())
	vertical := s.Axis(m.params.VerticalAxis)

	res := Result{Timestamp: s.Timestamp}
	if m.step(total, vertical, s.Timestamp) == stepEvaluate {
		m.evaluate(&res)
		m.log = m.log[:0]
	}
	res.Phase = m.phase
	return res
}

func (m *PhaseMachine) filter(total float64) float64 {
	m.buf.Push(total)
	m.filtered = m.buf.Slice()
	if m.buf.Len() <= minFilterSamples {
		return total
	}
	m.filtered = m.bank.Filter(m.filtered)
	return m.filtered[len(m.filtered)-1]
}

// step applies at most one transition.
func (m *PhaseMachine) step(total, vertical, now float64) stepOutcome {
	switch m.phase {
	case Ground:
		if vertical < compressionVertical && total < compressionTotal {
			m.phaseStart = now
			return m.enter(Compression)
		}

	case Compression:
		if vertical > m.params.MinPeakThreshold {
			m.jumpStart = now
			return m.enter(Takeoff)
		}
		if now-m.phaseStart > m.params.CompressionTimeout {
			return m.abandon()
		}

	case Takeoff:
		if total < flightTotal {
			return m.enter(Flight)
		}

	case Flight:
		if total > landingTotal && vertical > landingVertical {
			return m.enter(Landing)
		}
		if now-m.jumpStart > m.params.MaxJumpDuration {
			m.validator.RecordFalsePositive()
			return m.abandon()
		}

	case Landing:
		if total < groundTotal {
			m.enter(Ground)
			return stepEvaluate
		}
	}
	return stepNone
}

func (m *PhaseMachine) enter(p Phase) stepOutcome {
	m.phase = p
	m.log = append(m.log, p)
	return stepChanged
}

// abandon returns to ground without evaluating the cycle.
func (m *PhaseMachine) abandon() stepOutcome {
	m.phase = Ground
	m.log = m.log[:0]
	return stepTimeout
}

func (m *PhaseMachine) evaluate(res *Result) {
	score, ok := m.validator.Evaluate(m.log)
	res.Confidence = score
	if !ok {
		m.rejected++
		return
	}
	if !m.gate.allow(res.Timestamp) {
		return
	}
	m.validator.RecordValid()
	res.IsJump = true
	c := m.validator.Characteristics(m.log, m.filtered)
	res.Characteristics = &c
}

// Phase returns the current phase.
func (m *PhaseMachine) Phase() Phase { return m.phase }

// Validator exposes the running counters.
func (m *PhaseMachine) Validator() *Validator { return m.validator }

// Rejected returns the number of completed cycles the validator refused.
func (m *PhaseMachine) Rejected() int { return m.rejected }

// Reset returns to ground and clears buffers, counters and debounce state.
func (m *PhaseMachine) Reset() {
	m.buf.Reset()
	m.filtered = nil
	m.validator.Reset()
	m.gate.reset()
	m.phase = Ground
	m.phaseStart = 0
	m.jumpStart = 0
	m.log = m.log[:0]
	m.rejected = 0
}

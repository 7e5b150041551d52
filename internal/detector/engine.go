// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package detector turns a stream of motion samples into jump results.
//
// An Engine runs exactly one Strategy over one stream. It owns the debounce
// state, so every two accepted jumps of an Engine are more than
// Parameters.DebounceTime apart whatever the strategy.
package detector

import (
	"fmt"
	"strings"

	"github.com/relabs-tech/jump_counter/internal/motion"
)

// Strategy selects the detection algorithm.
type Strategy int

const (
	StrategyPhaseMachine Strategy = iota
	StrategySimpleThreshold
	StrategyAxisThreshold
)

func (s Strategy) String() string {
	switch s {
	case StrategyPhaseMachine:
		return "phase"
	case StrategySimpleThreshold:
		return "simple"
	case StrategyAxisThreshold:
		return "axis"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy accepts "phase", "simple" or "axis".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phase", "phase_state_machine":
		return StrategyPhaseMachine, nil
	case "simple", "simple_threshold":
		return StrategySimpleThreshold, nil
	case "axis", "axis_threshold":
		return StrategyAxisThreshold, nil
	}
	return 0, fmt.Errorf("unknown detection strategy %q (want phase, simple or axis)", s)
}

// Detector is a single detection strategy.
type Detector interface {
	Process(motion.Sample) Result
	Reset()
}

// Stats are the running counters of an Engine.
type Stats struct {
	Samples        int     `json:"samples"`
	OutOfOrder     int     `json:"out_of_order"` // dropped, timestamp not increasing
	Jumps          int     `json:"jumps"`
	Debounced      int     `json:"debounced"`       // jumps suppressed by the debounce interval
	Rejected       int     `json:"rejected"`        // phase cycles refused by the validator
	FalsePositives int     `json:"false_positives"` // flights that timed out
	Quality        Quality `json:"quality"`
}

// Engine runs one strategy over one sample stream. It is not safe for
// concurrent use; confine each Engine to one stream.
type Engine struct {
	strategy Strategy
	params   Parameters
	det      Detector
	gate     *gate

	lastTS  float64
	started bool
	stats   Stats
}

// New validates p and creates an Engine.
func New(strategy Strategy, p Parameters) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("detector: invalid parameters: %w", err)
	}

	g := &gate{interval: p.DebounceTime}
	e := &Engine{strategy: strategy, params: p, gate: g}
	switch strategy {
	case StrategyPhaseMachine:
		e.det = newPhaseMachine(p, g)
	case StrategySimpleThreshold:
		e.det = newSimpleThreshold(p, g)
	case StrategyAxisThreshold:
		e.det = newAxisThreshold(p, g)
	default:
		return nil, fmt.Errorf("detector: unknown strategy %d", int(strategy))
	}
	return e, nil
}

// Process runs one sample through the strategy. Samples whose timestamp does
// not increase are dropped and reported as non-jumps.
func (e *Engine) Process(s motion.Sample) Result {
	if e.started && s.Timestamp <= e.lastTS {
		e.stats.OutOfOrder++
		return Result{Phase: e.Phase(), Timestamp: s.Timestamp}
	}
	e.started = true
	e.lastTS = s.Timestamp
	e.stats.Samples++

	res := e.det.Process(s)
	if res.IsJump {
		e.stats.Jumps++
	}
	return res
}

// Phase returns the phase machine's current phase, Ground for the other strategies.
func (e *Engine) Phase() Phase {
	if pm, ok := e.det.(*PhaseMachine); ok {
		return pm.Phase()
	}
	return Ground
}

// Stats returns a snapshot of the counters.
func (e *Engine) Stats() Stats {
	st := e.stats
	st.Debounced = e.gate.suppressed
	st.Quality = QualityUnknown
	if pm, ok := e.det.(*PhaseMachine); ok {
		st.Rejected = pm.Rejected()
		st.FalsePositives = pm.Validator().FalsePositives()
		st.Quality = pm.Validator().Quality()
	}
	return st
}

// Strategy returns the configured strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }

// Parameters returns the configured parameters.
func (e *Engine) Parameters() Parameters { return e.params }

// Reset starts a new session: buffers, counters and debounce are cleared.
func (e *Engine) Reset() {
	e.det.Reset()
	e.gate.reset()
	e.lastTS = 0
	e.started = false
	e.stats = Stats{}
}

// gate enforces the minimum time between accepted jumps.
type gate struct {
	interval   float64
	last       float64
	seen       bool
	suppressed int
}

// allow records a jump at t unless it falls within the interval of the last one.
func (g *gate) allow(t float64) bool {
	if g.seen && t-g.last <= g.interval {
		g.suppressed++
		return false
	}
	g.last = t
	g.seen = true
	return true
}

func (g *gate) reset() {
	g.last = 0
	g.seen = false
	g.suppressed = 0
}

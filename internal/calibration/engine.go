// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package calibration runs the guided calibration procedure: a quiet
// baseline recording followed by a set of test jumps, turned into a Profile.
package calibration

import (
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/jump_counter/internal/motion"
	"github.com/relabs-tech/jump_counter/internal/peaks"
)

// State is a calibration phase.
type State int

const (
	Idle State = iota
	CollectingBaseline
	CollectingJumps
	AnalyzingData
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CollectingBaseline:
		return "collecting_baseline"
	case CollectingJumps:
		return "collecting_jumps"
	case AnalyzingData:
		return "analyzing_data"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether the state only changes on Start.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

// Config tunes a calibration run. Durations are in seconds of sample time.
type Config struct {
	BaselineDuration float64
	Pause            float64 // between baseline and jumps
	RequiredJumps    int
	JumpTimeout      float64
	Tail             float64 // recording kept after the last live jump

	LiveThreshold   float64 // g, live jump counter
	LiveMinInterval float64 // seconds

	Peaks peaks.WindowConfig // BaselineNoise is filled in by the engine
}

// DefaultConfig returns the 100 Hz calibration procedure.
func DefaultConfig() Config {
	return Config{
		BaselineDuration: 3.0,
		Pause:            2.0,
		RequiredJumps:    10,
		JumpTimeout:      30.0,
		Tail:             0.6,
		LiveThreshold:    1.3,
		LiveMinInterval:  0.3,
		Peaks:            peaks.DefaultWindowConfig(0),
	}
}

// Engine is the calibration state machine. Samples are pushed with Add and
// all timing is derived from their timestamps. An Engine is not safe for
// concurrent use.
type Engine struct {
	cfg Config
	now func() time.Time

	state        State
	progress     float64
	instructions string
	err          error
	profile      *Profile

	baseline      []motion.AccelerationSample
	baselineStart float64
	noise         float64

	jumps     []motion.AccelerationSample
	jumpStart float64 // first sample time that is recorded
	liveCount int
	lastLive  float64
	liveSeen  bool
	stopAt    float64
	stopping  bool
}

// NewEngine creates an idle engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, now: time.Now, instructions: "Press start to calibrate"}
}

// Start discards any previous run and begins the baseline recording.
func (e *Engine) Start() {
	e.reset()
	e.state = CollectingBaseline
	e.instructions = "Stand still with your arms relaxed"
}

// Cancel stops a running calibration and returns to Idle without a profile.
// It has no effect once the run has completed or failed.
func (e *Engine) Cancel() {
	if e.state.Terminal() {
		return
	}
	e.reset()
	e.instructions = "Calibration cancelled"
}

func (e *Engine) reset() {
	e.state = Idle
	e.progress = 0
	e.err = nil
	e.profile = nil
	e.baseline = nil
	e.baselineStart = 0
	e.noise = 0
	e.jumps = nil
	e.jumpStart = 0
	e.liveCount = 0
	e.lastLive = 0
	e.liveSeen = false
	e.stopAt = 0
	e.stopping = false
}

// Add feeds one sample and returns the state after processing it.
// Samples are ignored outside the two recording phases.
func (e *Engine) Add(s motion.AccelerationSample) State {
	switch e.state {
	case CollectingBaseline:
		e.addBaseline(s)
	case CollectingJumps:
		e.addJump(s)
	}
	return e.state
}

// AddSample is Add for a full motion sample.
func (e *Engine) AddSample(s motion.Sample) State {
	return e.Add(s.Acceleration())
}

func (e *Engine) addBaseline(s motion.AccelerationSample) {
	if len(e.baseline) == 0 {
		e.baselineStart = s.Timestamp
	}
	elapsed := s.Timestamp - e.baselineStart
	if elapsed >= e.cfg.BaselineDuration {
		e.finishBaseline(s.Timestamp)
		return
	}
	e.baseline = append(e.baseline, s)
	e.progress = min(elapsed/e.cfg.BaselineDuration, 1.0) * 0.3
}

func (e *Engine) finishBaseline(now float64) {
	e.noise = BaselineNoise(e.baseline)
	e.baseline = nil
	e.state = CollectingJumps
	e.progress = 0.3
	e.jumpStart = now + e.cfg.Pause
	e.instructions = fmt.Sprintf("Get ready to do %d jumps", e.cfg.RequiredJumps)
}

func (e *Engine) addJump(s motion.AccelerationSample) {
	if s.Timestamp < e.jumpStart {
		return
	}
	if s.Timestamp-e.jumpStart >= e.cfg.JumpTimeout {
		e.analyze()
		return
	}
	if e.stopping && s.Timestamp >= e.stopAt {
		e.analyze()
		return
	}

	e.jumps = append(e.jumps, s)
	if e.stopping {
		return
	}

	if s.Magnitude() > e.cfg.LiveThreshold && (!e.liveSeen || s.Timestamp-e.lastLive > e.cfg.LiveMinInterval) {
		e.liveSeen = true
		e.lastLive = s.Timestamp
		e.liveCount++
		e.progress = 0.3 + float64(e.liveCount)/float64(e.cfg.RequiredJumps)*0.5
		e.instructions = fmt.Sprintf("Jump %d of %d detected", e.liveCount, e.cfg.RequiredJumps)
		if e.liveCount >= e.cfg.RequiredJumps {
			e.stopping = true
			e.stopAt = s.Timestamp + e.cfg.Tail
		}
	}
}

func (e *Engine) analyze() {
	e.state = AnalyzingData
	e.progress = 0.8
	e.instructions = "Analyzing your jump pattern..."

	wc := e.cfg.Peaks
	wc.BaselineNoise = e.noise
	a, err := Analyze(e.jumps, wc, e.cfg.RequiredJumps)
	e.jumps = nil
	if err != nil {
		e.state = Failed
		e.err = err
		if errors.Is(err, ErrNotEnoughJumps) {
			e.instructions = "Not enough jumps detected. Please try again."
		} else {
			e.instructions = "No jump data collected"
		}
		return
	}

	p := NewProfile(e.noise, a, e.now())
	e.profile = &p
	e.state = Completed
	e.progress = 1.0
	e.instructions = "Calibration complete!"
}

// State returns the current phase.
func (e *Engine) State() State { return e.state }

// Progress returns overall progress in [0,1].
func (e *Engine) Progress() float64 { return e.progress }

// Instructions returns the text to show the user.
func (e *Engine) Instructions() string { return e.instructions }

// JumpsDetected returns the live jump count of the current run.
func (e *Engine) JumpsDetected() int { return e.liveCount }

// BaselineNoise returns the noise measured in the baseline phase.
func (e *Engine) BaselineNoise() float64 { return e.noise }

// Err returns the failure cause when the state is Failed.
func (e *Engine) Err() error { return e.err }

// Reason returns the failure text, empty unless Failed.
func (e *Engine) Reason() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

// Profile returns the result of a completed run.
func (e *Engine) Profile() (Profile, bool) {
	if e.profile == nil {
		return Profile{}, false
	}
	return *e.profile, true
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package detector

import "slices"

// Template is the phase log of a clean jump cycle.
var Template = []Phase{Compression, Takeoff, Flight, Landing, Ground}

// MatchScore right-aligns log and Template, counts equal positions over the
// overlap and divides by the template length.
func MatchScore(log []Phase) float64 {
	n := min(len(log), len(Template))
	if n == 0 {
		return 0
	}
	matches := 0
	for i := range n {
		if log[len(log)-n+i] == Template[len(Template)-n+i] {
			matches++
		}
	}
	return float64(matches) / float64(len(Template))
}

// Validator scores completed phase logs and tracks the running
// valid/false-positive counts used for the quality bucket.
type Validator struct {
	patternThreshold float64
	samplePeriod     float64

	valid          int
	falsePositives int
}

// NewValidator creates a Validator using the pattern threshold and sample
// period from p.
func NewValidator(p Parameters) *Validator {
	return &Validator{
		patternThreshold: p.PatternMatchThreshold,
		samplePeriod:     p.SamplePeriod,
	}
}

// Evaluate scores a cycle log. A cycle is accepted when at least three of
// these hold: score above the pattern threshold, a takeoff entry, a flight
// entry, a non-empty log. Evaluate does not touch the counters; callers
// report accepted jumps with RecordValid.
func (v *Validator) Evaluate(log []Phase) (score float64, accepted bool) {
	score = MatchScore(log)

	met := 0
	for _, ok := range []bool{
		score > v.patternThreshold,
		slices.Contains(log, Takeoff),
		slices.Contains(log, Flight),
		len(log) > 0,
	} {
		if ok {
			met++
		}
	}
	return score, met >= 3
}

// RecordValid counts an accepted jump.
func (v *Validator) RecordValid() {
	v.valid++
}

// RecordFalsePositive counts a cycle abandoned in flight.
func (v *Validator) RecordFalsePositive() {
	v.falsePositives++
}

// Characteristics estimates the jump described by an accepted cycle log and
// the filtered signal buffer.
func (v *Validator) Characteristics(log []Phase, filtered []float64) Characteristics {
	if len(filtered) == 0 {
		return Characteristics{Quality: QualityUnknown}
	}
	peak := slices.Max(filtered)

	flights := 0
	for _, p := range log {
		if p == Flight {
			flights++
		}
	}
	return Characteristics{
		PeakAcceleration: peak,
		AirTime:          float64(flights) * v.samplePeriod,
		JumpHeight:       JumpHeight(peak),
		Quality:          v.Quality(),
	}
}

// Quality buckets valid/(valid+falsePositives).
func (v *Validator) Quality() Quality {
	total := v.valid + v.falsePositives
	if total == 0 {
		return QualityUnknown
	}
	ratio := float64(v.valid) / float64(total)
	switch {
	case ratio > 0.9:
		return QualityExcellent
	case ratio > 0.7:
		return QualityGood
	case ratio > 0.5:
		return QualityFair
	}
	return QualityPoor
}

// Valid returns the number of accepted cycles.
func (v *Validator) Valid() int { return v.valid }

// FalsePositives returns the number of abandoned flights.
func (v *Validator) FalsePositives() int { return v.falsePositives }

// Reset clears the counters.
func (v *Validator) Reset() {
	v.valid = 0
	v.falsePositives = 0
}

// JumpHeight is a rough projectile estimate in cm that treats the peak
// acceleration, applied for 0.1 s, as the takeoff velocity. It is not
// calibrated against measured heights.
func JumpHeight(peak float64) float64 {
	const g = 9.8
	v := peak * g * 0.1
	return v * v / (2 * g) * 100
}

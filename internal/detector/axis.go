// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package detector

import "github.com/relabs-tech/jump_counter/internal/motion"

// AxisThreshold is the device-agnostic detector: a jump is any sample whose
// vertical user acceleration exceeds AxisThreshold, outside the debounce
// interval.
type AxisThreshold struct {
	axis      motion.Axis
	threshold float64
	gate      *gate
}

// NewAxisThreshold creates a detector with its own debounce state.
func NewAxisThreshold(p Parameters) *AxisThreshold {
	return newAxisThreshold(p, &gate{interval: p.DebounceTime})
}

func newAxisThreshold(p Parameters, g *gate) *AxisThreshold {
	return &AxisThreshold{axis: p.VerticalAxis, threshold: p.AxisThreshold, gate: g}
}

func (d *AxisThreshold) Process(s motion.Sample) Result {
	res := Result{Phase: Ground, Timestamp: s.Timestamp}
	v := s.Axis(d.axis)
	if v <= d.threshold || !d.gate.allow(s.Timestamp) {
		return res
	}
	res.IsJump = true
	res.Confidence = 1
	res.Characteristics = &Characteristics{PeakAcceleration: v, Quality: QualityUnknown}
	return res
}

// Reset clears the debounce state.
func (d *AxisThreshold) Reset() {
	d.gate.reset()
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package detector

import (
	"math"

	"github.com/relabs-tech/jump_counter/internal/filter"
	"github.com/relabs-tech/jump_counter/internal/motion"
)

// peakMargin keeps the window maximum away from both window edges.
const peakMargin = 2

// SimpleThreshold declares a jump when a sliding window of raw magnitudes has
// a sharp, mostly vertical peak strictly inside it. A peak stays inside the
// window for several samples but is only considered once.
type SimpleThreshold struct {
	params Parameters
	mags   *filter.Ring
	verts  *filter.Ring
	times  *filter.Ring
	gate   *gate

	lastPeak float64
	seenPeak bool
}

// NewSimpleThreshold creates a detector with its own debounce state.
func NewSimpleThreshold(p Parameters) *SimpleThreshold {
	return newSimpleThreshold(p, &gate{interval: p.DebounceTime})
}

func newSimpleThreshold(p Parameters, g *gate) *SimpleThreshold {
	return &SimpleThreshold{
		params: p,
		mags:   filter.NewRing(p.WindowSize),
		verts:  filter.NewRing(p.WindowSize),
		times:  filter.NewRing(p.WindowSize),
		gate:   g,
	}
}

func (d *SimpleThreshold) Process(s motion.Sample) Result {
	d.mags.Push(s.Magnitude())
	d.verts.Push(s.Axis(d.params.VerticalAxis))
	d.times.Push(s.Timestamp)

	res := Result{Phase: Ground, Timestamp: s.Timestamp}
	n := d.mags.Len()
	if n < d.mags.Cap() {
		return res
	}

	m := 0
	for i := 1; i < n; i++ {
		if d.mags.At(i) > d.mags.At(m) {
			m = i
		}
	}
	if m < peakMargin || m > n-1-peakMargin {
		return res
	}

	peak := d.mags.At(m)
	limit := d.params.Sensitivity - d.params.NoiseFloor
	vertical := math.Abs(d.verts.At(m))
	if peak <= limit || vertical <= d.params.VerticalRatio*limit {
		return res
	}
	if d.mags.At(m-1) >= peak || d.mags.At(m+1) >= peak {
		return res
	}
	at := d.times.At(m)
	if d.seenPeak && at <= d.lastPeak {
		return res
	}
	d.lastPeak, d.seenPeak = at, true
	if !d.gate.allow(s.Timestamp) {
		return res
	}

	res.IsJump = true
	res.Confidence = math.Min(1, vertical/peak)
	res.Characteristics = &Characteristics{
		PeakAcceleration: peak,
		JumpHeight:       JumpHeight(peak),
		Quality:          QualityUnknown,
	}
	return res
}

// Reset clears the windows and debounce state.
func (d *SimpleThreshold) Reset() {
	d.mags.Reset()
	d.verts.Reset()
	d.times.Reset()
	d.gate.reset()
	d.lastPeak, d.seenPeak = 0, false
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package filter implements the smoothing, high-pass and median filters
// applied to the acceleration magnitude before phase detection.
package filter

import (
	"math"
	"sort"
)

// Default filter settings for a 100 Hz stream.
const (
	DefaultSmoothWindow = 3
	DefaultCutoffHz     = 0.5
	DefaultSamplePeriod = 0.01
	DefaultMedianWindow = 5
)

// Bank is the fixed moving-average -> high-pass -> median pipeline.
type Bank struct {
	SmoothWindow int     // odd
	CutoffHz     float64 // high-pass cutoff
	SamplePeriod float64 // seconds
	MedianWindow int     // odd
}

// NewBank returns a Bank with the default settings.
func NewBank() Bank {
	return Bank{
		SmoothWindow: DefaultSmoothWindow,
		CutoffHz:     DefaultCutoffHz,
		SamplePeriod: DefaultSamplePeriod,
		MedianWindow: DefaultMedianWindow,
	}
}

// Filter runs the full pipeline. The output has the same length as the input.
func (b Bank) Filter(signal []float64) []float64 {
	out := MovingAverage(signal, b.SmoothWindow)
	out = HighPass(out, b.CutoffHz, b.SamplePeriod)
	return Median(out, b.MedianWindow)
}

// MovingAverage replaces each sample with the mean of the window centred on
// it. Windows are clipped at the sequence boundaries, never padded.
func MovingAverage(signal []float64, window int) []float64 {
	half := window / 2
	out := make([]float64, len(signal))
	for i := range signal {
		start := max(0, i-half)
		end := min(len(signal), i+half+1)
		var sum float64
		for _, v := range signal[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// HighPass is a single-pole RC high-pass filter:
//
//	RC = 1/(2π·fc), α = RC/(RC+dt)
//	y[0] = x[0], y[i] = α·(y[i-1] + x[i] - x[i-1])
func HighPass(signal []float64, cutoffHz, dt float64) []float64 {
	out := make([]float64, len(signal))
	if len(signal) == 0 {
		return out
	}
	rc := 1.0 / (2.0 * math.Pi * cutoffHz)
	alpha := rc / (rc + dt)

	out[0] = signal[0]
	for i := 1; i < len(signal); i++ {
		out[i] = alpha * (out[i-1] + signal[i] - signal[i-1])
	}
	return out
}

// Median replaces each sample with the median of the window centred on it,
// clipped at the boundaries. For even-sized edge windows the upper median
// is used.
func Median(signal []float64, window int) []float64 {
	half := window / 2
	out := make([]float64, len(signal))
	buf := make([]float64, 0, window)
	for i := range signal {
		start := max(0, i-half)
		end := min(len(signal), i+half+1)
		buf = append(buf[:0], signal[start:end]...)
		sort.Float64s(buf)
		out[i] = buf[len(buf)/2]
	}
	return out
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/relabs-tech/jump_counter/internal/motion"
	"github.com/relabs-tech/jump_counter/internal/peaks"
)

var (
	// ErrNoJumpData means the jump window recorded nothing.
	ErrNoJumpData = errors.New("no jump data collected")
	// ErrNotEnoughJumps means fewer peaks were found than jumps requested.
	ErrNotEnoughJumps = errors.New("not enough jumps detected")
)

const (
	signatureHalfWidth = 25

	thresholdMargin   = 0.3
	minIntervalFactor = 0.7
	maxIntervalFactor = 1.5
	minIntervalFloor  = 0.2
	maxIntervalCap    = 2.0
)

// Analysis holds the peak statistics of a jump recording.
type Analysis struct {
	Peaks           []peaks.Peak
	AveragePeak     float64
	AverageInterval float64 // 0 with a single peak
	Signature       []float64
	Confidence      float64
}

// Analyze finds the jump peaks in a recording and summarises them.
// It fails with ErrNoJumpData on an empty recording and ErrNotEnoughJumps
// when fewer than required peaks are found.
func Analyze(samples []motion.AccelerationSample, cfg peaks.WindowConfig, required int) (Analysis, error) {
	if len(samples) == 0 {
		return Analysis{}, ErrNoJumpData
	}

	found := peaks.FindWindowed(samples, cfg)
	if len(found) < required || len(found) == 0 {
		return Analysis{}, fmt.Errorf("%w: found %d of %d", ErrNotEnoughJumps, len(found), required)
	}

	accels := make([]float64, len(found))
	for i, p := range found {
		accels[i] = p.Acceleration
	}

	a := Analysis{
		Peaks:       found,
		AveragePeak: mean(accels),
		Signature:   Signature(samples, found[0].Index),
		Confidence:  Confidence(accels),
	}
	if len(found) > 1 {
		var sum float64
		for i := 1; i < len(found); i++ {
			sum += found[i].Timestamp - found[i-1].Timestamp
		}
		a.AverageInterval = sum / float64(len(found)-1)
	}
	return a, nil
}

// NewProfile derives thresholds from a baseline noise level and a jump analysis.
func NewProfile(baselineNoise float64, a Analysis, createdAt time.Time) Profile {
	maxInterval := maxIntervalCap
	if a.AverageInterval > 0 {
		maxInterval = math.Min(maxIntervalCap, a.AverageInterval*maxIntervalFactor)
	}
	return Profile{
		ID:                      uuid.New(),
		CreatedAt:               createdAt,
		BaselineNoise:           baselineNoise,
		AveragePeakAcceleration: a.AveragePeak,
		OptimalThreshold:        baselineNoise + thresholdMargin*(a.AveragePeak-baselineNoise),
		MinJumpInterval:         math.Max(minIntervalFloor, a.AverageInterval*minIntervalFactor),
		MaxJumpInterval:         maxInterval,
		JumpSignature:           a.Signature,
		Confidence:              a.Confidence,
	}
}

// BaselineNoise is the population standard deviation of the sample magnitudes.
func BaselineNoise(samples []motion.AccelerationSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	mags := make([]float64, len(samples))
	for i, s := range samples {
		mags[i] = s.Magnitude()
	}
	return stdDev(mags)
}

// Confidence rates how consistent the peak accelerations are, using their
// coefficient of variation.
func Confidence(peakAccels []float64) float64 {
	if len(peakAccels) <= 1 {
		return 0.5
	}
	m := mean(peakAccels)
	if m == 0 {
		return 0.65
	}
	cv := stdDev(peakAccels) / m
	switch {
	case cv < 0.1:
		return 0.95
	case cv < 0.2:
		return 0.85
	case cv < 0.3:
		return 0.75
	}
	return 0.65
}

// Signature returns the magnitudes of the 50 samples centred on index,
// divided by their maximum.
func Signature(samples []motion.AccelerationSample, index int) []float64 {
	start := max(0, index-signatureHalfWidth)
	end := min(len(samples), index+signatureHalfWidth)
	if start >= end {
		return nil
	}

	sig := make([]float64, 0, end-start)
	var peak float64
	for _, s := range samples[start:end] {
		m := s.Magnitude()
		peak = math.Max(peak, m)
		sig = append(sig, m)
	}
	if peak > 0 {
		for i := range sig {
			sig[i] /= peak
		}
	}
	return sig
}

func mean(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func stdDev(v []float64) float64 {
	m := mean(v)
	var sq float64
	for _, x := range v {
		sq += (x - m) * (x - m)
	}
	return math.Sqrt(sq / float64(len(v)))
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package peaks finds acceleration peaks, either as strict local maxima in a
// plain signal or as window-centred maxima in a calibration recording.
package peaks

import (
	"sort"

	"github.com/relabs-tech/jump_counter/internal/motion"
)

// DefaultMinDistance is 300 ms at 100 Hz.
const DefaultMinDistance = 30

// Find returns the indices of local maxima above threshold, keeping only
// peaks at least minDistance samples after the previously kept one.
func Find(signal []float64, threshold float64, minDistance int) []int {
	if len(signal) < 3 {
		return nil
	}

	var candidates []int
	for i := 1; i < len(signal)-1; i++ {
		curr := signal[i]
		if curr > signal[i-1] && curr > signal[i+1] && curr > threshold {
			candidates = append(candidates, i)
		}
	}
	return FilterClose(candidates, minDistance)
}

// FilterClose drops candidates closer than minDistance to the last kept one.
// Candidates must be in ascending order.
func FilterClose(candidates []int, minDistance int) []int {
	if len(candidates) <= 1 {
		return candidates
	}
	kept := []int{candidates[0]}
	for _, c := range candidates[1:] {
		if c-kept[len(kept)-1] >= minDistance {
			kept = append(kept, c)
		}
	}
	return kept
}

// Peak is a jump peak found in a calibration recording.
type Peak struct {
	Index        int     `json:"index"`
	Timestamp    float64 `json:"timestamp"`
	Acceleration float64 `json:"acceleration"`
	Vertical     float64 `json:"vertical"`
}

// WindowConfig controls FindWindowed.
type WindowConfig struct {
	Window        int     // samples; the peak must sit at Window/2
	Threshold     float64 // g, before the noise margin
	BaselineNoise float64 // g, standard deviation of the quiet recording
	NoiseSigmas   float64 // margin above noise, in standard deviations
	MinSeparation float64 // seconds between kept peaks
}

// DefaultWindowConfig matches a 100 Hz calibration recording.
func DefaultWindowConfig(baselineNoise float64) WindowConfig {
	return WindowConfig{
		Window:        50,
		Threshold:     1.3,
		BaselineNoise: baselineNoise,
		NoiseSigmas:   3,
		MinSeparation: 0.3,
	}
}

// FindWindowed scans every index that has a full window around it and keeps
// it when the window maximum (first occurrence) sits exactly at the centre
// and exceeds Threshold + NoiseSigmas·BaselineNoise. Peaks within
// MinSeparation seconds of a kept peak are then removed.
func FindWindowed(samples []motion.AccelerationSample, cfg WindowConfig) []Peak {
	half := cfg.Window / 2
	if cfg.Window <= 0 || len(samples) < 2*cfg.Window {
		return nil
	}

	mags := make([]float64, len(samples))
	for i, s := range samples {
		mags[i] = s.Magnitude()
	}
	limit := cfg.Threshold + cfg.BaselineNoise*cfg.NoiseSigmas

	var found []Peak
	for i := cfg.Window; i < len(samples)-cfg.Window; i++ {
		maxIdx := i - half
		for j := i - half; j <= i+half; j++ {
			if mags[j] > mags[maxIdx] {
				maxIdx = j
			}
		}
		if maxIdx != i || mags[i] <= limit {
			continue
		}
		found = append(found, Peak{
			Index:        i,
			Timestamp:    samples[i].Timestamp,
			Acceleration: mags[i],
			Vertical:     samples[i].Y,
		})
	}
	return filterNearby(found, cfg.MinSeparation)
}

func filterNearby(found []Peak, minSeparation float64) []Peak {
	if len(found) == 0 {
		return nil
	}
	sort.SliceStable(found, func(a, b int) bool {
		return found[a].Timestamp < found[b].Timestamp
	})

	kept := []Peak{found[0]}
	for _, p := range found[1:] {
		if p.Timestamp-kept[len(kept)-1].Timestamp > minSeparation {
			kept = append(kept, p)
		}
	}
	return kept
}

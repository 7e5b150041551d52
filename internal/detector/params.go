// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package detector

import (
	"fmt"

	"github.com/relabs-tech/jump_counter/internal/calibration"
	"github.com/relabs-tech/jump_counter/internal/motion"
)

// Parameters configure every detection strategy. Thresholds are in g,
// durations in seconds.
type Parameters struct {
	// Phase machine thresholds
	MinPeakThreshold float64 `json:"min_peak_threshold"` // vertical takeoff threshold
	MaxPeakThreshold float64 `json:"max_peak_threshold"` // upper sanity bound for peaks
	VerticalRatio    float64 `json:"vertical_ratio"`     // vertical share of a simple-threshold peak

	// Timing
	MinJumpDuration    float64 `json:"min_jump_duration"`
	MaxJumpDuration    float64 `json:"max_jump_duration"` // flight timeout
	DebounceTime       float64 `json:"debounce_time"`     // minimum time between jumps
	CompressionTimeout float64 `json:"compression_timeout"`

	// Pattern recognition
	PatternMatchThreshold float64 `json:"pattern_match_threshold"` // 0-1

	// Simple threshold strategy
	Sensitivity float64 `json:"sensitivity"`
	NoiseFloor  float64 `json:"noise_floor"`
	WindowSize  int     `json:"window_size"`

	// Axis threshold strategy
	AxisThreshold float64 `json:"axis_threshold"`

	// Stream
	VerticalAxis motion.Axis `json:"vertical_axis"`
	SamplePeriod float64     `json:"sample_period"`
	BufferSize   int         `json:"buffer_size"` // filtered history, in samples
}

// DefaultParameters returns the tuning used for a wrist-worn 100 Hz stream.
func DefaultParameters() Parameters {
	return Parameters{
		MinPeakThreshold:      1.5,
		MaxPeakThreshold:      4.0,
		VerticalRatio:         0.7,
		MinJumpDuration:       0.15,
		MaxJumpDuration:       0.8,
		DebounceTime:          0.3,
		CompressionTimeout:    0.5,
		PatternMatchThreshold: 0.75,
		Sensitivity:           1.5,
		NoiseFloor:            0,
		WindowSize:            10,
		AxisThreshold:         0.8,
		VerticalAxis:          motion.AxisY,
		SamplePeriod:          0.01,
		BufferSize:            100,
	}
}

// Validate rejects inverted bounds and out-of-range values.
func (p Parameters) Validate() error {
	if p.MinPeakThreshold >= p.MaxPeakThreshold {
		return fmt.Errorf("min peak threshold %.3f must be below max peak threshold %.3f",
			p.MinPeakThreshold, p.MaxPeakThreshold)
	}
	if p.MinJumpDuration < 0 || p.MinJumpDuration >= p.MaxJumpDuration {
		return fmt.Errorf("min jump duration %.3f must be in [0, max jump duration %.3f)",
			p.MinJumpDuration, p.MaxJumpDuration)
	}
	if p.DebounceTime < 0 {
		return fmt.Errorf("debounce time must be >= 0, got %.3f", p.DebounceTime)
	}
	if p.CompressionTimeout <= 0 {
		return fmt.Errorf("compression timeout must be > 0, got %.3f", p.CompressionTimeout)
	}
	if p.PatternMatchThreshold < 0 || p.PatternMatchThreshold > 1 {
		return fmt.Errorf("pattern match threshold must be 0-1, got %.3f", p.PatternMatchThreshold)
	}
	if p.VerticalRatio <= 0 || p.VerticalRatio > 1 {
		return fmt.Errorf("vertical ratio must be in (0, 1], got %.3f", p.VerticalRatio)
	}
	if p.NoiseFloor < 0 {
		return fmt.Errorf("noise floor must be >= 0, got %.3f", p.NoiseFloor)
	}
	if p.Sensitivity <= p.NoiseFloor {
		return fmt.Errorf("sensitivity %.3f must exceed noise floor %.3f", p.Sensitivity, p.NoiseFloor)
	}
	if p.WindowSize < 5 {
		return fmt.Errorf("window size must be >= 5 (2-sample margin around the peak), got %d", p.WindowSize)
	}
	if p.SamplePeriod <= 0 {
		return fmt.Errorf("sample period must be > 0, got %.4f", p.SamplePeriod)
	}
	if p.BufferSize < 3 {
		return fmt.Errorf("buffer size must be >= 3, got %d", p.BufferSize)
	}
	if _, err := motion.ParseAxis(string(p.VerticalAxis)); err != nil {
		return fmt.Errorf("vertical axis: %w", err)
	}
	return nil
}

// ApplyProfile seeds the thresholds from a calibration profile.
func (p Parameters) ApplyProfile(profile calibration.Profile) Parameters {
	p.Sensitivity = profile.OptimalThreshold
	p.DebounceTime = profile.MinJumpInterval
	p.NoiseFloor = profile.BaselineNoise
	return p
}

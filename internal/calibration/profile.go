// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the per-user thresholds derived from one calibration run.
// It is created once and never modified afterwards.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	BaselineNoise           float64 `json:"baseline_noise"`            // g, std dev while standing still
	AveragePeakAcceleration float64 `json:"average_peak_acceleration"` // g
	OptimalThreshold        float64 `json:"optimal_threshold"`         // g

	MinJumpInterval float64 `json:"min_jump_interval"` // seconds
	MaxJumpInterval float64 `json:"max_jump_interval"` // seconds

	JumpSignature []float64 `json:"jump_signature"` // normalised to [0,1]
	Confidence    float64   `json:"confidence"`     // 0-1

	UserHeight *float64 `json:"user_height,omitempty"` // cm
	UserWeight *float64 `json:"user_weight,omitempty"` // kg
}

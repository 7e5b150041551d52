// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package detector

// Quality buckets the running ratio of valid jumps to false positives.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
	QualityUnknown   Quality = "unknown"
)

// Characteristics describe an accepted jump.
type Characteristics struct {
	PeakAcceleration float64 `json:"peak_acceleration"` // g
	AirTime          float64 `json:"air_time"`          // seconds
	JumpHeight       float64 `json:"jump_height"`       // cm, rough estimate
	Quality          Quality `json:"quality"`
}

// Result is the outcome of processing one sample.
type Result struct {
	IsJump          bool             `json:"is_jump"`
	Confidence      float64          `json:"confidence"`
	Phase           Phase            `json:"phase"`
	Timestamp       float64          `json:"timestamp"`
	Characteristics *Characteristics `json:"characteristics,omitempty"`
}

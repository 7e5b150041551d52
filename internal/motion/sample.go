// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motion holds the sample types shared by the detectors, the
// calibration engine and the sample sources.
package motion

import (
	"fmt"
	"math"
)

// Sample represents a single device-motion reading.
// Acceleration is user acceleration (gravity removed) in g,
// rotation rate is in rad/s, timestamp is monotonic seconds.
type Sample struct {
	AX float64 `json:"ax"` // user acceleration
	AY float64 `json:"ay"`
	AZ float64 `json:"az"`

	RX float64 `json:"rx"` // rotation rate
	RY float64 `json:"ry"`
	RZ float64 `json:"rz"`

	Timestamp float64 `json:"timestamp"`
}

// Magnitude returns the total user acceleration in g.
func (s Sample) Magnitude() float64 {
	return math.Sqrt(s.AX*s.AX + s.AY*s.AY + s.AZ*s.AZ)
}

// Axis returns the acceleration component along a.
func (s Sample) Axis(a Axis) float64 {
	switch a {
	case AxisX:
		return s.AX
	case AxisZ:
		return s.AZ
	default:
		return s.AY
	}
}

// Acceleration drops the rotation rate.
func (s Sample) Acceleration() AccelerationSample {
	return AccelerationSample{Timestamp: s.Timestamp, X: s.AX, Y: s.AY, Z: s.AZ}
}

// AccelerationSample is the calibration input: timestamp plus x/y/z acceleration.
type AccelerationSample struct {
	Timestamp float64 `json:"timestamp"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
}

// Magnitude returns sqrt(x²+y²+z²).
func (a AccelerationSample) Magnitude() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// Axis names the device axis treated as vertical.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y" // watch crown-up orientation
	AxisZ Axis = "z"
)

// ParseAxis validates an axis name.
func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case AxisX, AxisY, AxisZ:
		return Axis(s), nil
	}
	return "", fmt.Errorf("unknown axis %q (want x, y or z)", s)
}

// Source is anything that can provide samples over time.
type Source interface {
	Next() (Sample, error)
}

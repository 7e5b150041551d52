// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package detector

import "fmt"

// Phase is one stage of a jump cycle.
type Phase int

const (
	Ground Phase = iota
	Compression
	Takeoff
	Flight
	Landing
)

var phaseNames = [...]string{"ground", "compression", "takeoff", "flight", "landing"}

func (p Phase) String() string {
	if p < Ground || p > Landing {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// ParsePhase is the inverse of String.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return Ground, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ExpectedAcceleration returns the typical acceleration range of the phase, in g.
func (p Phase) ExpectedAcceleration() (lo, hi float64) {
	switch p {
	case Compression:
		return -0.5, -0.1
	case Takeoff:
		return 1.5, 4.0
	case Flight:
		return -0.3, 0.3
	case Landing:
		return 1.0, 3.0
	}
	return -0.2, 0.2
}

// InExpectedRange reports whether a lies in the phase's expected range.
func (p Phase) InExpectedRange(a float64) bool {
	lo, hi := p.ExpectedAcceleration()
	return a >= lo && a <= hi
}

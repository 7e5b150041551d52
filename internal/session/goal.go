// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package session

import "fmt"

// GoalType is either a jump count or a duration.
type GoalType string

const (
	GoalCount GoalType = "count"
	GoalTime  GoalType = "time"
)

// Default goals.
const (
	DefaultGoalCount   = 1000
	DefaultGoalMinutes = 10
)

// Goal is the target of a session.
type Goal struct {
	Type    GoalType `json:"type"`
	Count   int      `json:"count"`
	Minutes int      `json:"minutes"`
}

// DefaultGoal is 1000 jumps.
func DefaultGoal() Goal {
	return Goal{Type: GoalCount, Count: DefaultGoalCount, Minutes: DefaultGoalMinutes}
}

// Validate checks the type and the relevant target.
func (g Goal) Validate() error {
	switch g.Type {
	case GoalCount:
		if g.Count <= 0 {
			return fmt.Errorf("goal count must be > 0, got %d", g.Count)
		}
	case GoalTime:
		if g.Minutes <= 0 {
			return fmt.Errorf("goal minutes must be > 0, got %d", g.Minutes)
		}
	default:
		return fmt.Errorf("unknown goal type %q (want count or time)", g.Type)
	}
	return nil
}

// Progress returns how far the session is towards the goal, capped at 1.
func (g Goal) Progress(s Summary) float64 {
	var p float64
	switch g.Type {
	case GoalCount:
		if g.Count > 0 {
			p = float64(s.JumpCount) / float64(g.Count)
		}
	case GoalTime:
		if g.Minutes > 0 {
			p = s.Duration / float64(g.Minutes*60)
		}
	}
	return min(p, 1)
}

// Reached reports whether the session met the goal.
func (g Goal) Reached(s Summary) bool {
	return g.Progress(s) >= 1
}

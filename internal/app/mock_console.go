// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/jump_counter/internal/detector"
	"github.com/relabs-tech/jump_counter/internal/session"
	"github.com/relabs-tech/jump_counter/internal/source"
)

// RunMockConsole detects jumps in the mock source locally, without a
// broker, and prints each one.
func RunMockConsole(strategy detector.Strategy) error {
	engine, err := detector.New(strategy, detector.DefaultParameters())
	if err != nil {
		return err
	}

	src := source.NewMockSource()
	var tracker *session.Tracker
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		s, err := src.Next()
		if err != nil {
			return err
		}
		if tracker == nil {
			tracker = session.NewTracker(session.DefaultConfig(), s.Timestamp, time.Now())
		}

		res := engine.Process(s)
		if !res.IsJump {
			tracker.Observe(s.Timestamp)
			continue
		}
		tracker.AddJump(res.Timestamp)
		fmt.Printf("JUMP #%-4d t=%7.2fs conf=%.2f rate=%5.1f/min phase=%s\n",
			tracker.Count(), res.Timestamp, res.Confidence, tracker.Rate(), engine.Phase())
	}
	return nil
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/jump_counter/internal/detector"
	"github.com/relabs-tech/jump_counter/internal/recording"
	"github.com/relabs-tech/jump_counter/internal/session"
	"github.com/relabs-tech/jump_counter/internal/store"
)

// replayResult is the outcome of running one recording through an engine.
type replayResult struct {
	Jumps    []detector.Result
	Labelled int // rows flagged as jumps in the recording
	Stats    detector.Stats
	Summary  session.Summary
}

func replay(recs []recording.Record, strategy detector.Strategy, p detector.Parameters, sessionCfg session.Config) (replayResult, error) {
	engine, err := detector.New(strategy, p)
	if err != nil {
		return replayResult{}, err
	}

	var res replayResult
	var tracker *session.Tracker
	for _, r := range recs {
		if r.Jump {
			res.Labelled++
		}
		s := r.Sample()
		if tracker == nil {
			tracker = session.NewTracker(sessionCfg, s.Timestamp, time.Now())
		}
		out := engine.Process(s)
		if out.IsJump {
			res.Jumps = append(res.Jumps, out)
			tracker.AddJump(out.Timestamp)
		} else {
			tracker.Observe(s.Timestamp)
		}
	}

	res.Stats = engine.Stats()
	if tracker != nil {
		res.Summary = tracker.Summary()
	}
	return res, nil
}

func newReplayCmd(opts *options) *cobra.Command {
	var (
		strategyName string
		useProfile   bool
		showJumps    bool
		save         bool
		device       string
	)

	cmd := &cobra.Command{
		Use:   "replay <recording>",
		Short: "Run a recorded session through the jump detector.",
		Long: `Replay a CSV or Parquet motion recording through the jump detector and
print the detected jumps and a session summary.

Examples:
  # Count jumps with the phase machine and the configured thresholds
  jumpctl replay session.csv

  # Compare strategies, tuned by the latest calibration profile
  jumpctl replay session.parquet --strategy simple --use-profile --jumps`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			strategy := cfg.DetectionStrategy
			if cmd.Flags().Changed("strategy") {
				if strategy, err = detector.ParseStrategy(strategyName); err != nil {
					return err
				}
			}
			p, err := cfg.DetectorParameters()
			if err != nil {
				return err
			}

			var profiles store.ProfileStore
			if useProfile || save {
				if profiles, err = store.Open(cfg.ProfileBackend, cfg.ProfilePath); err != nil {
					return err
				}
				defer profiles.Close()
			}
			if useProfile {
				prof, err := profiles.LatestProfile(cmd.Context())
				if err != nil {
					return fmt.Errorf("latest profile: %w", err)
				}
				p = p.ApplyProfile(prof)
				fmt.Fprintf(cmd.OutOrStdout(), "Using profile %s\n", prof.ID)
			}

			recs, err := recording.ReadFile(args[0])
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				return errors.New("recording is empty")
			}

			res, err := replay(recs, strategy, p, cfg.SessionConfig())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showJumps && len(res.Jumps) > 0 {
				if err := printJumps(out, res.Jumps); err != nil {
					return err
				}
			}
			if device == "" {
				device = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			res.Summary.Device = device

			printSummary(out, res.Summary)
			printStats(out, res.Stats)
			fmt.Fprintf(out, "  Strategy:     %s\n", strategy)
			if res.Labelled > 0 {
				fmt.Fprintf(out, "  Labelled:     %d jumps in the recording\n", res.Labelled)
			}

			goal := cfg.Goal()
			fmt.Fprintf(out, "  Goal:         %.0f%%\n", goal.Progress(res.Summary)*100)

			if save {
				sessions, ok := profiles.(store.SessionStore)
				if !ok {
					return errors.New("--save needs the sqlite backend")
				}
				if err := sessions.SaveSession(cmd.Context(), res.Summary); err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved session %s\n", res.Summary.ID)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&strategyName, "strategy", "s", "phase", "detection strategy: phase, simple or axis")
	f.BoolVar(&useProfile, "use-profile", false, "tune thresholds with the latest calibration profile")
	f.BoolVar(&showJumps, "jumps", false, "print every detected jump")
	f.BoolVar(&save, "save", false, "store the session summary (sqlite backend)")
	f.StringVar(&device, "device", "", "device name stored with the session (default: file name)")
	return cmd
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/jump_counter/internal/calibration"
	"github.com/relabs-tech/jump_counter/internal/motion"
	"github.com/relabs-tech/jump_counter/internal/recording"
	"github.com/relabs-tech/jump_counter/internal/source"
)

// runCalibration feeds src into a fresh engine until it completes, fails or
// the source ends, printing the instructions whenever they change.
func runCalibration(w io.Writer, cfg calibration.Config, src motion.Source) (*calibration.Engine, error) {
	engine := calibration.NewEngine(cfg)
	engine.Start()

	last := ""
	report := func() {
		if ins := engine.Instructions(); ins != last {
			last = ins
			fmt.Fprintf(w, "[%3.0f%%] %s\n", engine.Progress()*100, ins)
		}
	}
	report()

	for !engine.State().Terminal() {
		s, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, source.ErrMalformedLine) {
			fmt.Fprintf(w, "skipping %v\n", err)
			continue
		}
		if err != nil {
			return engine, err
		}
		engine.AddSample(s)
		report()
	}

	if !engine.State().Terminal() {
		engine.Cancel()
		return engine, errors.New("samples ended before calibration finished")
	}
	return engine, nil
}

func newCalibrateCmd(opts *options) *cobra.Command {
	var (
		serialPort string
		baudRate   uint
		jumps      int
	)

	cmd := &cobra.Command{
		Use:   "calibrate [recording]",
		Short: "Calibrate jump thresholds and store the profile.",
		Long: `Run the guided calibration: 3 s standing still, a 2 s pause, then the
requested number of jumps. Samples come from a recording or, with
--serial, live from the wearable.

Examples:
  # Calibrate from a recorded calibration session
  jumpctl calibrate calibration.csv

  # Calibrate live
  jumpctl calibrate --serial /dev/ttyUSB0 --baud 115200`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (serialPort == "") {
				return errors.New("give either a recording or --serial")
			}
			if jumps < 1 {
				return fmt.Errorf("--jumps must be at least 1, got %d", jumps)
			}
			out := cmd.OutOrStdout()

			var src motion.Source
			if serialPort != "" {
				lines, err := source.OpenSerial(source.SerialOptions{PortName: serialPort, BaudRate: baudRate})
				if err != nil {
					return err
				}
				defer lines.Close()

				fmt.Fprintln(out, "=== Guided jump calibration ===")
				fmt.Fprintf(out, "Stand still when asked, then do %d jumps at your normal pace.\n", jumps)
				waitEnter(bufio.NewReader(cmd.InOrStdin()), out, "Press ENTER to start...")
				src = lines
			} else {
				recs, err := recording.ReadFile(args[0])
				if err != nil {
					return err
				}
				src = source.NewSlice(recording.Samples(recs))
			}

			cfg := calibration.DefaultConfig()
			cfg.RequiredJumps = jumps

			engine, err := runCalibration(out, cfg, src)
			if err != nil {
				return err
			}
			if engine.State() == calibration.Failed {
				return fmt.Errorf("calibration failed: %w", engine.Err())
			}

			p, _ := engine.Profile()
			profiles, err := opts.openStore()
			if err != nil {
				return err
			}
			defer profiles.Close()
			if err := profiles.SaveProfile(cmd.Context(), p); err != nil {
				return err
			}

			fmt.Fprintln(out)
			printProfile(out, p)
			fmt.Fprintln(out, "Profile saved.")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&serialPort, "serial", "", "serial port of the wearable")
	f.UintVar(&baudRate, "baud", 115200, "serial baud rate")
	f.IntVar(&jumps, "jumps", calibration.DefaultConfig().RequiredJumps, "number of calibration jumps")
	return cmd
}

func waitEnter(in *bufio.Reader, w io.Writer, prompt string) {
	fmt.Fprint(w, prompt)
	_, _ = in.ReadString('\n')
}

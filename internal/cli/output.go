// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/relabs-tech/jump_counter/internal/calibration"
	"github.com/relabs-tech/jump_counter/internal/detector"
	"github.com/relabs-tech/jump_counter/internal/session"
)

var (
	excellentColor = color.New(color.FgGreen, color.Bold)
	goodColor      = color.New(color.FgGreen)
	fairColor      = color.New(color.FgYellow)
	poorColor      = color.New(color.FgRed)
	headingColor   = color.New(color.Bold)
)

func colorQuality(q detector.Quality) string {
	switch q {
	case detector.QualityExcellent:
		return excellentColor.Sprint(q)
	case detector.QualityGood:
		return goodColor.Sprint(q)
	case detector.QualityFair:
		return fairColor.Sprint(q)
	case detector.QualityPoor:
		return poorColor.Sprint(q)
	}
	return string(q)
}

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

func printJumps(w io.Writer, jumps []detector.Result) error {
	table := newTable(w, "#", "Time", "Confidence", "Peak (g)", "Air (s)", "Height (cm)", "Quality")
	var data [][]string
	for i, j := range jumps {
		row := []string{strconv.Itoa(i + 1), f2(j.Timestamp), f2(j.Confidence)}
		if c := j.Characteristics; c != nil {
			row = append(row, f2(c.PeakAcceleration), f2(c.AirTime), fmt.Sprintf("%.1f", c.JumpHeight), colorQuality(c.Quality))
		} else {
			row = append(row, "-", "-", "-", "-")
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func printSummary(w io.Writer, s session.Summary) {
	headingColor.Fprintln(w, "Session summary")
	fmt.Fprintf(w, "  Jumps:        %d\n", s.JumpCount)
	fmt.Fprintf(w, "  Duration:     %.1fs\n", s.Duration)
	fmt.Fprintf(w, "  Average rate: %.1f/min\n", s.AverageRate)
	fmt.Fprintf(w, "  Peak rate:    %.1f/min\n", s.PeakRate)
	fmt.Fprintf(w, "  Breaks:       %d small, %d long\n", s.SmallBreaks, s.LongBreaks)
}

func printStats(w io.Writer, st detector.Stats) {
	fmt.Fprintf(w, "  Samples:      %d (%d out of order)\n", st.Samples, st.OutOfOrder)
	fmt.Fprintf(w, "  Debounced:    %d\n", st.Debounced)
	if st.Quality != detector.QualityUnknown {
		fmt.Fprintf(w, "  Rejected:     %d cycles, %d flight timeouts\n", st.Rejected, st.FalsePositives)
		fmt.Fprintf(w, "  Quality:      %s\n", colorQuality(st.Quality))
	}
}

func printProfiles(w io.Writer, profiles []calibration.Profile) error {
	table := newTable(w, "ID", "Created", "Threshold (g)", "Noise (g)", "Interval (s)", "Confidence")
	var data [][]string
	for _, p := range profiles {
		data = append(data, []string{
			p.ID.String(),
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
			f2(p.OptimalThreshold),
			f2(p.BaselineNoise),
			fmt.Sprintf("%.2f-%.2f", p.MinJumpInterval, p.MaxJumpInterval),
			f2(p.Confidence),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func printProfile(w io.Writer, p calibration.Profile) {
	headingColor.Fprintf(w, "Profile %s\n", p.ID)
	fmt.Fprintf(w, "  Created:          %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Baseline noise:   %.3fg\n", p.BaselineNoise)
	fmt.Fprintf(w, "  Average peak:     %.3fg\n", p.AveragePeakAcceleration)
	fmt.Fprintf(w, "  Threshold:        %.3fg\n", p.OptimalThreshold)
	fmt.Fprintf(w, "  Jump interval:    %.2fs - %.2fs\n", p.MinJumpInterval, p.MaxJumpInterval)
	fmt.Fprintf(w, "  Confidence:       %.2f\n", p.Confidence)
	fmt.Fprintf(w, "  Signature points: %d\n", len(p.JumpSignature))
}

func printSessions(w io.Writer, sessions []session.Summary) error {
	table := newTable(w, "ID", "Started", "Device", "Jumps", "Duration (s)", "Avg/min", "Peak/min", "Breaks")
	var data [][]string
	for _, s := range sessions {
		data = append(data, []string{
			s.ID.String()[:8],
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.Device,
			strconv.Itoa(s.JumpCount),
			fmt.Sprintf("%.1f", s.Duration),
			fmt.Sprintf("%.1f", s.AverageRate),
			fmt.Sprintf("%.1f", s.PeakRate),
			fmt.Sprintf("%d/%d", s.SmallBreaks, s.LongBreaks),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

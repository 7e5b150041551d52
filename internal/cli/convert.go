// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/jump_counter/internal/recording"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a recording between CSV and Parquet.",
		Long: `Convert a motion recording. Formats are chosen by extension (.csv or
.parquet).

Example:
  jumpctl convert watch_dump.csv watch_dump.parquet`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := recording.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := recording.WriteFile(args[1], recs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d samples to %s\n", len(recs), args[1])
			return nil
		},
	}
}

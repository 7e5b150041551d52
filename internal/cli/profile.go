// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/jump_counter/internal/calibration"
)

func newProfileCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect stored calibration profiles.",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List profiles, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := opts.openStore()
			if err != nil {
				return err
			}
			defer profiles.Close()

			all, err := profiles.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No profiles yet. Run jumpctl calibrate first.")
				return nil
			}
			return printProfiles(cmd.OutOrStdout(), all)
		},
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one profile, the latest by default.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := opts.openStore()
			if err != nil {
				return err
			}
			defer profiles.Close()

			var p calibration.Profile
			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid profile id: %w", err)
				}
				p, err = profiles.LoadProfile(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("profile %s: %w", id, err)
				}
			} else if p, err = profiles.LatestProfile(cmd.Context()); err != nil {
				return fmt.Errorf("latest profile: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			printProfile(cmd.OutOrStdout(), p)
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print the profile as JSON")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid profile id: %w", err)
			}
			profiles, err := opts.openStore()
			if err != nil {
				return err
			}
			defer profiles.Close()

			if err := profiles.DeleteProfile(cmd.Context(), id); err != nil {
				return fmt.Errorf("profile %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}

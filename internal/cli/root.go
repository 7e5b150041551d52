// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package cli implements the jumpctl command line tool: offline replay of
// recordings, calibration, format conversion and profile/session history.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/jump_counter/internal/config"
	"github.com/relabs-tech/jump_counter/internal/store"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	backend    string
	storePath  string
}

// load returns the config file when one is given, the defaults otherwise,
// with the store flags applied on top.
func (o *options) load() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.backend != "" {
		b, err := store.ParseBackend(o.backend)
		if err != nil {
			return nil, err
		}
		cfg.ProfileBackend = b
	}
	if o.storePath != "" {
		cfg.ProfilePath = o.storePath
	}
	return cfg, nil
}

func (o *options) openStore() (store.ProfileStore, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.ProfileBackend, cfg.ProfilePath)
}

func (o *options) openSessions() (store.SessionStore, func() error, error) {
	s, err := o.openStore()
	if err != nil {
		return nil, nil, err
	}
	sessions, ok := s.(store.SessionStore)
	if !ok {
		_ = s.Close()
		return nil, nil, fmt.Errorf("session history needs the sqlite backend (--backend sqlite)")
	}
	return sessions, s.Close, nil
}

// NewRootCmd builds the jumpctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "jumpctl",
		Short: "Jump rope counter tooling",
		Long: `jumpctl replays motion recordings through the jump detector, runs
calibration offline or against a serial wearable, converts recordings
between CSV and Parquet and inspects stored profiles and sessions.`,
		SilenceUsage: true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "KEY=VALUE config file (defaults are used when empty)")
	pf.StringVar(&opts.backend, "backend", "", "profile store backend: json or sqlite")
	pf.StringVar(&opts.storePath, "store", "", "profile directory (json) or database file (sqlite)")

	root.AddCommand(
		newReplayCmd(opts),
		newCalibrateCmd(opts),
		newConvertCmd(),
		newProfileCmd(opts),
		newSessionsCmd(opts),
	)
	return root
}

// Execute runs jumpctl and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

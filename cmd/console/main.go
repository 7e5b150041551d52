// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/jump_counter/internal/app"
	"github.com/relabs-tech/jump_counter/internal/detector"
)

func main() {
	strategyName := flag.String("strategy", "phase", "detection strategy: phase, simple or axis")
	flag.Parse()

	strategy, err := detector.ParseStrategy(*strategyName)
	if err != nil {
		log.Fatalf("invalid strategy: %v", err)
	}

	log.Printf("starting jump-counter (mock console, %s strategy)", strategy)

	if err := app.RunMockConsole(strategy); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

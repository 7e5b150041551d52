// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package recording reads and writes motion recordings as CSV
// (Timestamp,AX,AY,AZ,RX,RY,RZ,Jump) or Parquet.
package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/relabs-tech/jump_counter/internal/motion"
)

// Record is one recorded sample and whether a jump was detected on it.
type Record struct {
	Timestamp float64 `parquet:"timestamp,snappy"`
	AX        float64 `parquet:"ax,snappy"`
	AY        float64 `parquet:"ay,snappy"`
	AZ        float64 `parquet:"az,snappy"`
	RX        float64 `parquet:"rx,snappy"`
	RY        float64 `parquet:"ry,snappy"`
	RZ        float64 `parquet:"rz,snappy"`
	Jump      bool    `parquet:"jump,snappy"`
}

// FromSample builds a record.
func FromSample(s motion.Sample, jump bool) Record {
	return Record{
		Timestamp: s.Timestamp,
		AX:        s.AX, AY: s.AY, AZ: s.AZ,
		RX: s.RX, RY: s.RY, RZ: s.RZ,
		Jump: jump,
	}
}

// Sample drops the jump flag.
func (r Record) Sample() motion.Sample {
	return motion.Sample{
		AX: r.AX, AY: r.AY, AZ: r.AZ,
		RX: r.RX, RY: r.RY, RZ: r.RZ,
		Timestamp: r.Timestamp,
	}
}

// Samples converts records to samples.
func Samples(recs []Record) []motion.Sample {
	out := make([]motion.Sample, len(recs))
	for i, r := range recs {
		out[i] = r.Sample()
	}
	return out
}

// Format is a recording file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	}
	return "", fmt.Errorf("recording: unknown format for %q (want .csv or .parquet)", path)
}

// ReadFile loads a recording, choosing the format by extension.
func ReadFile(path string) ([]Record, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatParquet {
		return ReadParquet(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}

// WriteFile saves a recording, choosing the format by extension.
func WriteFile(path string, recs []Record) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if format == FormatParquet {
		return WriteParquet(path, recs)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("recording: %w", err)
	}
	if err := WriteCSV(f, recs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

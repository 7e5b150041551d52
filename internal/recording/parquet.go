// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package recording

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// WriteParquet writes records to a Parquet file.
func WriteParquet(path string, recs []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("recording: failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[Record](file)
	if _, err := writer.Write(recs); err != nil {
		_ = writer.Close()
		return fmt.Errorf("recording: failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("recording: failed to close parquet writer: %w", err)
	}
	return file.Close()
}

// ReadParquet reads every record of a Parquet file.
func ReadParquet(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[Record](file)
	defer func() { _ = reader.Close() }()

	out := make([]Record, reader.NumRows())
	n, err := reader.Read(out)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("recording: read parquet: %w", err)
	}
	return out[:n], nil
}

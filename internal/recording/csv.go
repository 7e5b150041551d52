// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package recording

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Header is the CSV header row.
var Header = []string{"Timestamp", "AX", "AY", "AZ", "RX", "RY", "RZ", "Jump"}

// ReadCSV parses a CSV recording. The header is required; the Jump column
// may be omitted.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("recording: empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("recording: read header: %w", err)
	}
	if len(head) < 7 {
		return nil, fmt.Errorf("recording: header has %d columns, want at least 7", len(head))
	}
	for i := range min(len(head), len(Header)) {
		if !strings.EqualFold(strings.TrimSpace(head[i]), Header[i]) {
			return nil, fmt.Errorf("recording: header column %d is %q, want %q", i+1, head[i], Header[i])
		}
	}

	var out []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("recording: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rec, err := parseRow(row, len(head))
		if err != nil {
			return nil, fmt.Errorf("recording: line %d: %w", line, err)
		}
		out = append(out, rec)
	}
}

func parseRow(row []string, columns int) (Record, error) {
	if len(row) != columns {
		return Record{}, fmt.Errorf("expected %d fields, got %d", columns, len(row))
	}
	var vals [7]float64
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return Record{}, fmt.Errorf("%s: %w", Header[i], err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Record{}, fmt.Errorf("%s: not a finite number: %q", Header[i], row[i])
		}
		vals[i] = v
	}
	rec := Record{
		Timestamp: vals[0],
		AX:        vals[1], AY: vals[2], AZ: vals[3],
		RX: vals[4], RY: vals[5], RZ: vals[6],
	}
	if columns > 7 {
		jump, err := strconv.ParseBool(strings.TrimSpace(row[7]))
		if err != nil {
			return Record{}, fmt.Errorf("Jump: %w", err)
		}
		rec.Jump = jump
	}
	return rec, nil
}

// CSVWriter streams records as CSV.
type CSVWriter struct {
	w   *csv.Writer
	row []string
}

// NewCSVWriter writes the header and returns a writer.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, fmt.Errorf("recording: write header: %w", err)
	}
	return &CSVWriter{w: cw, row: make([]string, len(Header))}, nil
}

// Write appends one record.
func (c *CSVWriter) Write(r Record) error {
	for i, v := range []float64{r.Timestamp, r.AX, r.AY, r.AZ, r.RX, r.RY, r.RZ} {
		c.row[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	c.row[7] = strconv.FormatBool(r.Jump)
	if err := c.w.Write(c.row); err != nil {
		return fmt.Errorf("recording: %w", err)
	}
	return nil
}

// Flush writes buffered rows.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// WriteCSV writes all records with a header.
func WriteCSV(w io.Writer, recs []Record) error {
	cw, err := NewCSVWriter(w)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	return cw.Flush()
}

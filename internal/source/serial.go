// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/jump_counter/internal/motion"
)

// ErrMalformedLine marks a line that could not be parsed as a sample. The
// source stays usable after it.
var ErrMalformedLine = errors.New("malformed sample line")

// SerialOptions selects the wearable's serial port.
type SerialOptions struct {
	PortName string
	BaudRate uint
}

// Lines reads one sample per text line:
//
//	timestamp,ax,ay,az,rx,ry,rz
//
// Empty lines and lines starting with '#' are skipped.
type Lines struct {
	r      *bufio.Reader
	closer io.Closer
	line   int
}

// NewLines creates a line source over r.
func NewLines(r io.Reader) *Lines {
	l := &Lines{r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// OpenSerial opens a serial port and reads samples from it.
func OpenSerial(opts SerialOptions) (*Lines, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:              opts.PortName,
		BaudRate:              opts.BaudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", opts.PortName, err)
	}
	return NewLines(port), nil
}

func (l *Lines) Next() (motion.Sample, error) {
	for {
		raw, err := l.r.ReadString('\n')
		if err != nil && (err != io.EOF || raw == "") {
			return motion.Sample{}, err
		}
		l.line++

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			if err == io.EOF {
				return motion.Sample{}, io.EOF
			}
			continue
		}
		s, perr := ParseLine(line)
		if perr != nil {
			return motion.Sample{}, fmt.Errorf("serial line %d: %w: %v", l.line, ErrMalformedLine, perr)
		}
		return s, nil
	}
}

// Close closes the underlying port, if any.
func (l *Lines) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// ParseLine parses "timestamp,ax,ay,az,rx,ry,rz". The rotation fields are
// optional.
func ParseLine(line string) (motion.Sample, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 4 && len(fields) != 7 {
		return motion.Sample{}, fmt.Errorf("expected 4 or 7 fields, got %d", len(fields))
	}
	vals := make([]float64, 7)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return motion.Sample{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return motion.Sample{}, fmt.Errorf("field %d: not a finite number: %q", i+1, f)
		}
		vals[i] = v
	}
	return motion.Sample{
		Timestamp: vals[0],
		AX:        vals[1],
		AY:        vals[2],
		AZ:        vals[3],
		RX:        vals[4],
		RY:        vals[5],
		RZ:        vals[6],
	}, nil
}

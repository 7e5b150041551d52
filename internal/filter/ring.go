// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package filter

// Ring is a fixed-capacity FIFO of float64 values. Once full, each Push
// overwrites the oldest value.
type Ring struct {
	data []float64
	pos  int
	full bool
}

// NewRing creates a Ring with the given capacity.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{data: make([]float64, capacity)}
}

// Push adds a value, dropping the oldest one when the ring is full.
func (r *Ring) Push(v float64) {
	r.data[r.pos] = v
	r.pos++
	if r.pos >= len(r.data) {
		r.pos = 0
		r.full = true
	}
}

// Len returns the number of buffered values.
func (r *Ring) Len() int {
	if r.full {
		return len(r.data)
	}
	return r.pos
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.data)
}

// At returns the i-th value in insertion order (0 is the oldest).
func (r *Ring) At(i int) float64 {
	if !r.full {
		return r.data[i]
	}
	return r.data[(r.pos+i)%len(r.data)]
}

// Slice returns the buffer contents in insertion order.
func (r *Ring) Slice() []float64 {
	n := r.Len()
	out := make([]float64, n)
	if r.full {
		copy(out, r.data[r.pos:])
		copy(out[len(r.data)-r.pos:], r.data[:r.pos])
	} else {
		copy(out, r.data[:r.pos])
	}
	return out
}

// Reset empties the ring.
func (r *Ring) Reset() {
	r.pos = 0
	r.full = false
}

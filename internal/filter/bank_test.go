package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name     string
		signal   []float64
		window   int
		expected []float64
	}{
		{
			name:     "empty",
			signal:   []float64{},
			window:   3,
			expected: []float64{},
		},
		{
			name:     "edges are clipped",
			signal:   []float64{1, 2, 3, 4},
			window:   3,
			expected: []float64{1.5, 2, 3, 3.5},
		},
		{
			name:     "single sample",
			signal:   []float64{7},
			window:   5,
			expected: []float64{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.signal, tt.window)
			require.Len(t, got, len(tt.expected))
			for i := range got {
				assert.InDelta(t, tt.expected[i], got[i], 1e-12)
			}
		})
	}
}

func TestMedianRemovesSpike(t *testing.T) {
	got := Median([]float64{1, 1, 9, 1, 1}, 5)
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, got)
}

func TestMedianEdgeWindows(t *testing.T) {
	// index 0 sees {5,1,3} -> 3; index 4 sees {3,8,2} -> 3
	got := Median([]float64{5, 1, 3, 8, 2}, 5)
	assert.Equal(t, 3.0, got[0])
	assert.Equal(t, 3.0, got[2])
	assert.Equal(t, 3.0, got[4])
}

// Constant input is a fixed point of both windowed filters.
func TestFlatSignalIsPreserved(t *testing.T) {
	for _, n := range []int{1, 2, 5, 17, 100} {
		flat := make([]float64, n)
		for i := range flat {
			flat[i] = 0.42
		}
		for _, w := range []int{3, 5, 7} {
			ma := MovingAverage(flat, w)
			med := Median(flat, w)
			require.Len(t, ma, n)
			require.Len(t, med, n)
			for i := range flat {
				assert.InDelta(t, 0.42, ma[i], 1e-12)
				assert.Equal(t, 0.42, med[i])
			}
		}
	}
}

func TestHighPass(t *testing.T) {
	rc := 1.0 / (2.0 * math.Pi * 0.5)
	alpha := rc / (rc + 0.01)

	got := HighPass([]float64{1, 1, 2}, 0.5, 0.01)
	require.Len(t, got, 3)
	assert.Equal(t, 1.0, got[0])
	assert.InDelta(t, alpha*1.0, got[1], 1e-12)
	assert.InDelta(t, alpha*(alpha+1.0), got[2], 1e-12)
}

func TestHighPassDecaysConstantInput(t *testing.T) {
	flat := make([]float64, 500)
	for i := range flat {
		flat[i] = 1
	}
	got := HighPass(flat, 0.5, 0.01)
	assert.Less(t, math.Abs(got[len(got)-1]), 1e-3)
}

func TestBankKeepsLength(t *testing.T) {
	signal := make([]float64, 100)
	for i := range signal {
		signal[i] = math.Sin(float64(i) / 5)
	}
	got := NewBank().Filter(signal)
	assert.Len(t, got, len(signal))
	assert.Empty(t, NewBank().Filter(nil))
}

func TestRing(t *testing.T) {
	r := NewRing(3)
	assert.Equal(t, 0, r.Len())
	r.Push(1)
	r.Push(2)
	assert.Equal(t, []float64{1, 2}, r.Slice())

	r.Push(3)
	r.Push(4)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []float64{2, 3, 4}, r.Slice())
	assert.Equal(t, 2.0, r.At(0))
	assert.Equal(t, 4.0, r.At(2))

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Slice())
}

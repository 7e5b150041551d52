package peaks

import (
	"math/rand"
	"testing"

	"github.com/relabs-tech/jump_counter/internal/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	tests := []struct {
		name        string
		signal      []float64
		threshold   float64
		minDistance int
		expected    []int
	}{
		{
			name:      "too short",
			signal:    []float64{1, 2},
			threshold: 0,
			expected:  nil,
		},
		{
			name:        "single peak",
			signal:      []float64{0, 1, 3, 1, 0},
			threshold:   2,
			minDistance: 1,
			expected:    []int{2},
		},
		{
			name:        "below threshold",
			signal:      []float64{0, 1, 3, 1, 0},
			threshold:   3,
			minDistance: 1,
			expected:    nil,
		},
		{
			name:        "plateau is not a strict maximum",
			signal:      []float64{0, 3, 3, 0},
			threshold:   1,
			minDistance: 1,
			expected:    nil,
		},
		{
			name:        "edges are never peaks",
			signal:      []float64{5, 1, 1, 5},
			threshold:   0,
			minDistance: 1,
			expected:    nil,
		},
		{
			name:        "close peaks are dropped",
			signal:      []float64{0, 2, 0, 2, 0, 0, 2, 0},
			threshold:   1,
			minDistance: 3,
			expected:    []int{1, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Find(tt.signal, tt.threshold, tt.minDistance))
		})
	}
}

// Kept peaks are always at least minDistance apart.
func TestFindSeparation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := range 50 {
		signal := make([]float64, 400)
		for i := range signal {
			signal[i] = rng.Float64() * 3
		}
		d := 1 + round%40
		got := Find(signal, 1.0, d)
		for i := 1; i < len(got); i++ {
			require.GreaterOrEqual(t, got[i]-got[i-1], d)
		}
	}
}

func TestFilterClose(t *testing.T) {
	assert.Equal(t, []int{4}, FilterClose([]int{4}, 30))
	assert.Equal(t, []int{0, 30, 61}, FilterClose([]int{0, 10, 30, 45, 61}, 30))
}

func spikeRecording(n int, at []int, height float64) []motion.AccelerationSample {
	samples := make([]motion.AccelerationSample, n)
	for i := range samples {
		samples[i] = motion.AccelerationSample{Timestamp: float64(i) * 0.01}
	}
	for _, idx := range at {
		samples[idx-1].Y = height / 2
		samples[idx].Y = height
		samples[idx+1].Y = height / 2
	}
	return samples
}

func TestFindWindowed(t *testing.T) {
	samples := spikeRecording(400, []int{60, 120, 180, 340}, 2.0)

	got := FindWindowed(samples, DefaultWindowConfig(0))
	require.Len(t, got, 4)
	assert.Equal(t, 60, got[0].Index)
	assert.InDelta(t, 0.6, got[0].Timestamp, 1e-9)
	assert.InDelta(t, 2.0, got[0].Acceleration, 1e-12)
	assert.InDelta(t, 2.0, got[0].Vertical, 1e-12)
}

func TestFindWindowedSkipsBorders(t *testing.T) {
	// 30 is inside the first window, 380 inside the last one.
	samples := spikeRecording(400, []int{30, 200, 380}, 2.0)
	got := FindWindowed(samples, DefaultWindowConfig(0))
	require.Len(t, got, 1)
	assert.Equal(t, 200, got[0].Index)
}

func TestFindWindowedNoiseMargin(t *testing.T) {
	samples := spikeRecording(400, []int{100, 200}, 1.5)

	assert.Len(t, FindWindowed(samples, DefaultWindowConfig(0)), 2)
	// 1.3 + 3·0.1 = 1.6 > 1.5
	assert.Empty(t, FindWindowed(samples, DefaultWindowConfig(0.1)))
}

func TestFindWindowedSeparation(t *testing.T) {
	// 0.26 s apart: both are window-centred maxima only if the window is
	// narrower than their distance.
	samples := spikeRecording(400, []int{100, 126, 200}, 2.0)
	cfg := DefaultWindowConfig(0)
	cfg.Window = 20

	got := FindWindowed(samples, cfg)
	require.Len(t, got, 2)
	assert.Equal(t, 100, got[0].Index)
	assert.Equal(t, 200, got[1].Index)
}

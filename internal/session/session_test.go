package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steady(start, gap float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*gap
	}
	return out
}

func TestSummarizeSteadyRate(t *testing.T) {
	// two jumps per second for 20 s
	s := Summarize(steady(0.5, 0.5, 40), 20, DefaultConfig())

	assert.Equal(t, 40, s.JumpCount)
	assert.InDelta(t, 120, s.AverageRate, 1e-9)
	require.Len(t, s.RatePoints, 20)
	assert.InDelta(t, 120, s.RatePoints[19].Rate, 1e-9)
	assert.InDelta(t, 120, s.PeakRate, 1e-9)
	assert.Zero(t, s.SmallBreaks)
	assert.Zero(t, s.LongBreaks)

	for _, gap := range s.Intervals() {
		assert.InDelta(t, 0.5, gap, 1e-12)
	}
}

func TestSummarizeBreaks(t *testing.T) {
	jumps := []float64{1, 2, 5.5, 6, 20, 21, 24}
	s := Summarize(jumps, 25, DefaultConfig())

	// 3.5 s and 3 s are small, 14 s is long
	assert.Equal(t, 2, s.SmallBreaks)
	assert.Equal(t, 1, s.LongBreaks)
	assert.Equal(t, []float64{1, 3.5, 0.5, 14, 1, 3}, s.Intervals())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 0, DefaultConfig())
	assert.Zero(t, s.JumpCount)
	assert.Zero(t, s.AverageRate)
	assert.Empty(t, s.RatePoints)
	assert.Nil(t, s.Intervals())
}

func TestTracker(t *testing.T) {
	wall := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	tr := NewTracker(DefaultConfig(), 100, wall)

	for _, ts := range steady(100.5, 0.5, 10) {
		tr.AddJump(ts)
	}
	tr.Observe(105)

	assert.Equal(t, 10, tr.Count())
	assert.InDelta(t, 5, tr.Elapsed(), 1e-9)
	// 10 jumps in the first 5 s
	assert.InDelta(t, 120, tr.Rate(), 1e-9)

	s := tr.Summary()
	assert.Equal(t, wall, s.StartedAt)
	assert.InDelta(t, 0.5, s.Jumps[0], 1e-9)
	assert.Len(t, s.RatePoints, 5)
}

func TestGoal(t *testing.T) {
	g := DefaultGoal()
	require.NoError(t, g.Validate())
	assert.False(t, g.Reached(Summary{JumpCount: 999}))
	assert.True(t, g.Reached(Summary{JumpCount: 1000}))
	assert.InDelta(t, 0.5, g.Progress(Summary{JumpCount: 500}), 1e-12)

	timed := Goal{Type: GoalTime, Minutes: 10}
	assert.InDelta(t, 0.5, timed.Progress(Summary{Duration: 300}), 1e-12)
	assert.True(t, timed.Reached(Summary{Duration: 700}))
	assert.Equal(t, 1.0, timed.Progress(Summary{Duration: 700}))

	assert.Error(t, Goal{Type: "distance"}.Validate())
	assert.Error(t, Goal{Type: GoalTime}.Validate())
}

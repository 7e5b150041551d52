package calibration

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/relabs-tech/jump_counter/internal/motion"
	"github.com/relabs-tech/jump_counter/internal/peaks"
	"github.com/relabs-tech/jump_counter/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quiet returns samples whose magnitude alternates between 1.0 and 1.2.
func quiet(start float64, n int) []motion.AccelerationSample {
	out := make([]motion.AccelerationSample, n)
	for i := range out {
		y := 1.0
		if i%2 == 1 {
			y = 1.2
		}
		out[i] = motion.AccelerationSample{Timestamp: start + float64(i)*0.01, Y: y}
	}
	return out
}

func jumpSession(start float64, jumps int) []motion.AccelerationSample {
	samples := source.Synthetic{Jumps: jumps, LeadIn: 30, Trail: 60, Start: start}.Samples()
	out := make([]motion.AccelerationSample, len(samples))
	for i, s := range samples {
		out[i] = s.Acceleration()
	}
	return out
}

func feed(e *Engine, samples []motion.AccelerationSample) State {
	for _, s := range samples {
		e.Add(s)
	}
	return e.State()
}

func TestBaselineNoise(t *testing.T) {
	assert.InDelta(t, 0.1, BaselineNoise(quiet(0, 300)), 1e-9)
	assert.Zero(t, BaselineNoise(nil))
}

func TestConfidence(t *testing.T) {
	same := []float64{2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
	assert.Equal(t, 0.95, Confidence(same))
	assert.Equal(t, 0.5, Confidence([]float64{2}))
	assert.Equal(t, 0.5, Confidence(nil))
	// mean 2, std 0.3 -> cv 0.15
	assert.Equal(t, 0.85, Confidence([]float64{1.7, 2.3}))
	// cv 0.25
	assert.Equal(t, 0.75, Confidence([]float64{1.5, 2.5}))
	assert.Equal(t, 0.65, Confidence([]float64{1, 3}))
}

func TestSignature(t *testing.T) {
	samples := jumpSession(0, 1)
	sig := Signature(samples, 58)
	require.Len(t, sig, 50)
	assert.InDelta(t, 1.0, sig[25], 1e-12)
	for _, v := range sig {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}

	// clipped at the start of the recording
	assert.Len(t, Signature(samples, 10), 35)
}

func TestAnalyze(t *testing.T) {
	a, err := Analyze(jumpSession(0, 10), peaks.DefaultWindowConfig(0.1), 10)
	require.NoError(t, err)
	require.Len(t, a.Peaks, 10)
	assert.InDelta(t, 2.0, a.AveragePeak, 1e-9)
	assert.InDelta(t, 0.6, a.AverageInterval, 1e-9)
	assert.Equal(t, 0.95, a.Confidence)
	assert.Len(t, a.Signature, 50)

	_, err = Analyze(nil, peaks.DefaultWindowConfig(0), 10)
	assert.ErrorIs(t, err, ErrNoJumpData)

	_, err = Analyze(jumpSession(0, 4), peaks.DefaultWindowConfig(0), 10)
	assert.ErrorIs(t, err, ErrNotEnoughJumps)
}

func TestNewProfile(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := NewProfile(0.1, Analysis{AveragePeak: 2.0, AverageInterval: 0.6, Confidence: 0.95}, created)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, created, p.CreatedAt)
	assert.InDelta(t, 0.67, p.OptimalThreshold, 1e-12)
	assert.InDelta(t, 0.42, p.MinJumpInterval, 1e-12)
	assert.InDelta(t, 0.9, p.MaxJumpInterval, 1e-12)

	fast := NewProfile(0, Analysis{AveragePeak: 2, AverageInterval: 0.2}, created)
	assert.Equal(t, 0.2, fast.MinJumpInterval)
	slow := NewProfile(0, Analysis{AveragePeak: 2, AverageInterval: 1.5}, created)
	assert.Equal(t, 2.0, slow.MaxJumpInterval)
	single := NewProfile(0, Analysis{AveragePeak: 2}, created)
	assert.Less(t, single.MinJumpInterval, single.MaxJumpInterval)
}

func TestProfileJSON(t *testing.T) {
	h := 172.0
	p := NewProfile(0.05, Analysis{AveragePeak: 2.1, AverageInterval: 0.55, Signature: []float64{0.2, 1, 0.4}, Confidence: 0.85},
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	p.UserHeight = &h

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"optimal_threshold"`)
	assert.NotContains(t, string(data), `"user_weight"`)

	var back Profile
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestEngineCompletes(t *testing.T) {
	e := NewEngine(DefaultConfig())
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, Idle, e.Add(motion.AccelerationSample{Timestamp: 0, Y: 3}), "ignored before Start")

	e.Start()
	assert.Equal(t, CollectingBaseline, e.State())

	base := quiet(0, 400)
	feed(e, base[:151])
	assert.InDelta(t, 0.15, e.Progress(), 1e-9)

	feed(e, base[151:301])
	require.Equal(t, CollectingJumps, e.State())
	assert.InDelta(t, 0.1, e.BaselineNoise(), 1e-9)
	assert.Contains(t, e.Instructions(), "10 jumps")

	// inside the 2 s pause nothing is recorded or counted
	feed(e, jumpSession(3.01, 3)[:150])
	assert.Zero(t, e.JumpsDetected())

	jumps := jumpSession(5.1, 10)
	state := feed(e, jumps)
	require.Equal(t, Completed, state, e.Reason())
	assert.Equal(t, 10, e.JumpsDetected())
	assert.Equal(t, 1.0, e.Progress())
	assert.NoError(t, e.Err())

	p, ok := e.Profile()
	require.True(t, ok)
	assert.InDelta(t, 0.1, p.BaselineNoise, 1e-9)
	assert.InDelta(t, 2.0, p.AveragePeakAcceleration, 1e-9)
	assert.InDelta(t, 0.67, p.OptimalThreshold, 1e-9)
	assert.InDelta(t, 0.42, p.MinJumpInterval, 1e-9)
	assert.InDelta(t, 0.9, p.MaxJumpInterval, 1e-9)
	assert.Equal(t, 0.95, p.Confidence)
	assert.Len(t, p.JumpSignature, 50)

	// terminal until restarted
	e.Cancel()
	assert.Equal(t, Completed, e.State())
	e.Start()
	_, ok = e.Profile()
	assert.False(t, ok)
}

func TestEngineLiveProgress(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Start()
	feed(e, quiet(0, 301))

	// three jumps, stop before the timeout
	feed(e, jumpSession(5.1, 3)[:200])
	assert.Equal(t, CollectingJumps, e.State())
	assert.Equal(t, 3, e.JumpsDetected())
	assert.InDelta(t, 0.45, e.Progress(), 1e-9)
}

func TestEngineNotEnoughJumps(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Start()
	feed(e, quiet(0, 301))
	feed(e, jumpSession(5.1, 5))
	require.Equal(t, CollectingJumps, e.State())

	// quiet until the 30 s collection window closes
	state := feed(e, quiet(9, 2700))
	require.Equal(t, Failed, state)
	assert.True(t, errors.Is(e.Err(), ErrNotEnoughJumps))
	assert.Contains(t, e.Reason(), "not enough jumps detected")
	_, ok := e.Profile()
	assert.False(t, ok)
}

func TestEngineNoJumpData(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Start()
	feed(e, quiet(0, 301))

	assert.Equal(t, Failed, e.Add(motion.AccelerationSample{Timestamp: 40}))
	assert.ErrorIs(t, e.Err(), ErrNoJumpData)
	assert.Equal(t, "no jump data collected", e.Reason())
}

func TestEngineCancel(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Start()
	feed(e, quiet(0, 100))
	e.Cancel()
	assert.Equal(t, Idle, e.State())
	assert.Zero(t, e.Progress())

	feed(e, quiet(1, 400))
	assert.Equal(t, Idle, e.State())
	_, ok := e.Profile()
	assert.False(t, ok)

	e.Start()
	feed(e, quiet(10, 301))
	assert.Equal(t, CollectingJumps, e.State())
	e.Cancel()
	assert.Equal(t, Idle, e.State())
	assert.Zero(t, e.JumpsDetected())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "collecting_jumps", CollectingJumps.String())
	assert.True(t, Failed.Terminal())
	assert.False(t, AnalyzingData.Terminal())
}

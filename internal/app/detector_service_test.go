package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/jump_counter/internal/calibration"
	"github.com/relabs-tech/jump_counter/internal/config"
	"github.com/relabs-tech/jump_counter/internal/detector"
	"github.com/relabs-tech/jump_counter/internal/session"
	"github.com/relabs-tech/jump_counter/internal/source"
	"github.com/relabs-tech/jump_counter/internal/store"
)

func newService(t *testing.T) *DetectorService {
	t.Helper()
	svc, err := NewDetectorService(detector.StrategyPhaseMachine, detector.DefaultParameters(),
		session.DefaultConfig(), session.Goal{Type: session.GoalCount, Count: 10})
	require.NoError(t, err)
	return svc
}

func TestDetectorServiceHandle(t *testing.T) {
	svc := newService(t)
	samples := source.Synthetic{Jumps: 10, LeadIn: 20, Trail: 30}.Samples()

	var events []*JumpEvent
	for _, s := range samples {
		payload, err := json.Marshal(MotionMessage{Device: "watch-1", Sample: s})
		require.NoError(t, err)
		ev, err := svc.Handle(payload)
		require.NoError(t, err)
		if ev != nil {
			events = append(events, ev)
		}
	}

	require.Len(t, events, 10)
	for i, ev := range events {
		assert.Equal(t, "watch-1", ev.Device)
		assert.Equal(t, i+1, ev.Count)
		assert.True(t, ev.IsJump)
		require.NotNil(t, ev.Characteristics)
	}
	assert.Positive(t, events[9].Rate)

	st, ok := svc.Status("watch-1")
	require.True(t, ok)
	assert.Equal(t, 10, st.Count)
	assert.Equal(t, "phase", st.Strategy)
	assert.Equal(t, detector.Ground, st.Phase)
	assert.True(t, st.GoalReached)
	assert.Equal(t, 1.0, st.GoalProgress)
	assert.Equal(t, len(samples), st.Stats.Samples)

	sum, ok := svc.Finish("watch-1")
	require.True(t, ok)
	assert.Equal(t, "watch-1", sum.Device)
	assert.Equal(t, 10, sum.JumpCount)
	assert.NotEqual(t, uuid.Nil, sum.ID)
	assert.Empty(t, svc.Devices())

	_, ok = svc.Status("watch-1")
	assert.False(t, ok)
}

func TestDetectorServiceRejectsBadPayload(t *testing.T) {
	svc := newService(t)
	_, err := svc.Handle([]byte("{not json"))
	assert.ErrorContains(t, err, "motion unmarshal")
	assert.Empty(t, svc.Devices())
}

func TestDetectorServiceSeparatesDevices(t *testing.T) {
	svc := newService(t)
	samples := source.Synthetic{Jumps: 3, LeadIn: 20, Trail: 30}.Samples()

	counts := map[string]int{}
	for _, s := range samples {
		// interleaving two streams must not mix their phase machines
		for _, d := range []string{"left", "right"} {
			if ev := svc.Process(d, s); ev != nil {
				counts[d]++
			}
		}
	}
	assert.Equal(t, map[string]int{"left": 3, "right": 3}, counts)
	assert.Equal(t, []string{"left", "right"}, svc.Devices())
}

func TestDetectorServiceFinishIdle(t *testing.T) {
	svc := newService(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	samples := source.Synthetic{Jumps: 2, LeadIn: 20, Trail: 30}.Samples()
	for _, s := range samples {
		svc.Process("old", s)
	}
	now = now.Add(20 * time.Second)
	svc.Process("fresh", samples[0])

	now = now.Add(15 * time.Second)
	sums := svc.FinishIdle(30 * time.Second)
	require.Len(t, sums, 1)
	assert.Equal(t, "old", sums[0].Device)
	assert.Equal(t, 2, sums[0].JumpCount)
	assert.Equal(t, []string{"fresh"}, svc.Devices())
}

func TestNewDetectorServiceValidates(t *testing.T) {
	p := detector.DefaultParameters()
	p.WindowSize = 1
	_, err := NewDetectorService(detector.StrategySimpleThreshold, p, session.DefaultConfig(), session.DefaultGoal())
	assert.ErrorContains(t, err, "window size")

	_, err = NewDetectorService(detector.StrategyPhaseMachine, detector.DefaultParameters(),
		session.DefaultConfig(), session.Goal{Type: "distance"})
	assert.ErrorContains(t, err, "unknown goal type")
}

func TestDetectorParametersFromProfile(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	profiles, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	p, err := detectorParameters(ctx, cfg, profiles)
	require.NoError(t, err)
	assert.Equal(t, cfg.Detector, p, "no profile keeps the configured values")

	good := calibration.Profile{
		ID:               uuid.New(),
		CreatedAt:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		BaselineNoise:    0.1,
		OptimalThreshold: 1.8,
		MinJumpInterval:  0.35,
		MaxJumpInterval:  0.9,
	}
	require.NoError(t, profiles.SaveProfile(ctx, good))

	p, err = detectorParameters(ctx, cfg, profiles)
	require.NoError(t, err)
	assert.Equal(t, 1.8, p.Sensitivity)
	assert.Equal(t, 0.35, p.DebounceTime)
	assert.Equal(t, 0.1, p.NoiseFloor)

	// threshold below the noise floor fails validation and is ignored
	bad := good
	bad.ID = uuid.New()
	bad.CreatedAt = good.CreatedAt.Add(time.Hour)
	bad.OptimalThreshold = 0.05
	require.NoError(t, profiles.SaveProfile(ctx, bad))

	p, err = detectorParameters(ctx, cfg, profiles)
	require.NoError(t, err)
	assert.Equal(t, cfg.Detector, p)
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/relabs-tech/jump_counter/internal/calibration"
	"github.com/relabs-tech/jump_counter/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile(day int, confidence float64) calibration.Profile {
	weight := 70.5
	return calibration.Profile{
		ID:                      uuid.New(),
		CreatedAt:               time.Date(2026, 4, day, 9, 30, 0, 0, time.UTC),
		BaselineNoise:           0.04,
		AveragePeakAcceleration: 2.2,
		OptimalThreshold:        0.688,
		MinJumpInterval:         0.35,
		MaxJumpInterval:         0.75,
		JumpSignature:           []float64{0.1, 0.5, 1, 0.6},
		Confidence:              confidence,
		UserWeight:              &weight,
	}
}

func openStores(t *testing.T) map[string]ProfileStore {
	t.Helper()
	dir := t.TempDir()

	fs, err := Open(JSONBackend, filepath.Join(dir, "profiles"))
	require.NoError(t, err)
	db, err := Open(SQLiteBackend, filepath.Join(dir, "jumps.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = fs.Close()
		_ = db.Close()
	})
	return map[string]ProfileStore{"json": fs, "sqlite": db}
}

func TestProfileStores(t *testing.T) {
	ctx := context.Background()
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.LatestProfile(ctx)
			assert.ErrorIs(t, err, ErrNotFound)

			older := testProfile(1, 0.85)
			newer := testProfile(3, 0.95)
			require.NoError(t, st.SaveProfile(ctx, older))
			require.NoError(t, st.SaveProfile(ctx, newer))

			got, err := st.LoadProfile(ctx, older.ID)
			require.NoError(t, err)
			assert.Equal(t, older, got)

			latest, err := st.LatestProfile(ctx)
			require.NoError(t, err)
			assert.Equal(t, newer.ID, latest.ID)

			all, err := st.ListProfiles(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, newer.ID, all[0].ID)

			// saving again replaces
			older.Confidence = 0.65
			require.NoError(t, st.SaveProfile(ctx, older))
			all, err = st.ListProfiles(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)

			require.NoError(t, st.DeleteProfile(ctx, newer.ID))
			assert.ErrorIs(t, st.DeleteProfile(ctx, newer.ID), ErrNotFound)
			_, err = st.LoadProfile(ctx, newer.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			latest, err = st.LatestProfile(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0.65, latest.Confidence)
		})
	}
}

func TestSQLiteSessions(t *testing.T) {
	ctx := context.Background()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "jumps.db"))
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	var ids []uuid.UUID
	for i := range 3 {
		sum := session.Summarize([]float64{0.5, 1.0, 1.5}, 2, session.DefaultConfig())
		sum.ID = uuid.New()
		sum.StartedAt = time.Date(2026, 4, 1+i, 7, 0, 0, 0, time.UTC)
		sum.Device = "watch"
		require.NoError(t, st.SaveSession(ctx, sum))
		ids = append(ids, sum.ID)
	}

	got, err := st.LoadSession(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, 3, got.JumpCount)
	assert.Equal(t, "watch", got.Device)
	assert.Len(t, got.RatePoints, 2)

	recent, err := st.ListSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)

	all, err := st.ListSessions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = st.LoadSession(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("sqlite")
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, b)

	_, err = ParseBackend("postgres")
	assert.Error(t, err)
	_, err = Open("postgres", "")
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/jump_counter/internal/detector"
	"github.com/relabs-tech/jump_counter/internal/motion"
	"github.com/relabs-tech/jump_counter/internal/session"
	"github.com/relabs-tech/jump_counter/internal/store"
)

const sample = `
# broker
MQTT_BROKER=tcp://localhost:1883
TOPIC_MOTION = wrist/motion

DETECTION_STRATEGY=simple
SENSITIVITY=1.8
NOISE_FLOOR=0.1
WINDOW_SIZE=12
VERTICAL_AXIS=Z

PROFILE_BACKEND=sqlite
PROFILE_PATH=/tmp/profiles.db
SOURCE=replay
REPLAY_FILE=session.csv
GOAL_TYPE=time
GOAL_MINUTES=5
SESSION_SMALL_BREAK=2.5
`

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "wrist/motion", cfg.TopicMotion)
	assert.Equal(t, "jump/jumps", cfg.TopicJumps)
	assert.Equal(t, detector.StrategySimpleThreshold, cfg.DetectionStrategy)
	assert.Equal(t, store.SQLiteBackend, cfg.ProfileBackend)
	assert.Equal(t, SourceReplay, cfg.Source)

	p, err := cfg.DetectorParameters()
	require.NoError(t, err)
	assert.InDelta(t, 1.8, p.Sensitivity, 1e-9)
	assert.InDelta(t, 0.1, p.NoiseFloor, 1e-9)
	assert.Equal(t, 12, p.WindowSize)
	assert.Equal(t, motion.AxisZ, p.VerticalAxis)
	assert.InDelta(t, detector.DefaultParameters().DebounceTime, p.DebounceTime, 1e-9)

	assert.Equal(t, session.Goal{Type: session.GoalTime, Count: session.DefaultGoalCount, Minutes: 5}, cfg.Goal())
	sc := cfg.SessionConfig()
	assert.InDelta(t, 2.5, sc.SmallBreak, 1e-9)
	assert.InDelta(t, 10, sc.LongBreak, 1e-9)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing broker", "TOPIC_JUMPS=x", "MQTT_BROKER is required"},
		{"no equals", "MQTT_BROKER=a\nGARBAGE", "invalid config line 2"},
		{"unknown key", "MQTT_BROKER=a\nFOO=1", `unknown config key: "FOO"`},
		{"bad float", "MQTT_BROKER=a\nSENSITIVITY=high", "invalid SENSITIVITY"},
		{"bad strategy", "MQTT_BROKER=a\nDETECTION_STRATEGY=magic", "invalid DETECTION_STRATEGY"},
		{"bad axis", "MQTT_BROKER=a\nVERTICAL_AXIS=w", "invalid VERTICAL_AXIS"},
		{"bad backend", "MQTT_BROKER=a\nPROFILE_BACKEND=redis", "unsupported profile backend"},
		{"bad source", "MQTT_BROKER=a\nSOURCE=bluetooth", "SOURCE must be"},
		{"serial without port", "MQTT_BROKER=a\nSOURCE=serial", "SERIAL_PORT is required"},
		{"replay without file", "MQTT_BROKER=a\nSOURCE=replay", "REPLAY_FILE is required"},
		{"inverted peaks", "MQTT_BROKER=a\nMIN_PEAK_THRESHOLD=5", "min peak threshold"},
		{"inverted breaks", "MQTT_BROKER=a\nSESSION_LONG_BREAK=1", "SESSION_SMALL_BREAK"},
		{"bad goal", "MQTT_BROKER=a\nGOAL_TYPE=distance", "unknown goal type"},
		{"bad port", "MQTT_BROKER=a\nWEB_SERVER_PORT=70000", "WEB_SERVER_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jump_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "session.csv", cfg.ReplayFile)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "failed to open config file")
}

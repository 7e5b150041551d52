package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/jump_counter/internal/detector"
	"github.com/relabs-tech/jump_counter/internal/motion"
	"github.com/relabs-tech/jump_counter/internal/session"
	"github.com/relabs-tech/jump_counter/internal/store"
)

// Sample sources understood by the producer.
const (
	SourceMock   = "mock"
	SourceSerial = "serial"
	SourceReplay = "replay"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDDetector string
	MQTTClientIDProducer string
	MQTTClientIDWeb      string
	MQTTClientIDConsole  string

	// Topics
	TopicMotion string // motion samples, one JSON sample per message
	TopicJumps  string // detected jumps
	TopicStatus string // per-session status and summaries

	// Detection
	DetectionStrategy detector.Strategy
	Detector          detector.Parameters

	// Profiles
	ProfileBackend store.Backend
	ProfilePath    string // directory for json, database file for sqlite

	// Sample source
	Source           string // mock, serial or replay
	SerialPort       string
	SerialBaudRate   uint
	ReplayFile       string
	SampleIntervalMS int // producer pacing

	// Web Server
	WebServerPort int

	// Sessions
	SessionSmallBreak float64 // seconds
	SessionLongBreak  float64 // seconds
	GoalType          session.GoalType
	GoalCount         int
	GoalMinutes       int
}

// Package-level singleton: set once through InitGlobal, read through Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	sessionCfg := session.DefaultConfig()
	goal := session.DefaultGoal()
	return &Config{
		MQTTClientIDDetector: "jump-detector",
		MQTTClientIDProducer: "jump-producer",
		MQTTClientIDWeb:      "jump-web",
		MQTTClientIDConsole:  "jump-console",

		TopicMotion: "jump/motion",
		TopicJumps:  "jump/jumps",
		TopicStatus: "jump/status",

		DetectionStrategy: detector.StrategyPhaseMachine,
		Detector:          detector.DefaultParameters(),

		ProfileBackend: store.JSONBackend,
		ProfilePath:    "profiles",

		Source:           SourceMock,
		SerialBaudRate:   115200,
		SampleIntervalMS: 10,

		WebServerPort: 8080,

		SessionSmallBreak: sessionCfg.SmallBreak,
		SessionLongBreak:  sessionCfg.LongBreak,
		GoalType:          goal.Type,
		GoalCount:         goal.Count,
		GoalMinutes:       goal.Minutes,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// floatKeys maps the detector's float parameters to their config keys.
func (c *Config) floatKeys() map[string]*float64 {
	p := &c.Detector
	return map[string]*float64{
		"MIN_PEAK_THRESHOLD":      &p.MinPeakThreshold,
		"MAX_PEAK_THRESHOLD":      &p.MaxPeakThreshold,
		"VERTICAL_RATIO":          &p.VerticalRatio,
		"MIN_JUMP_DURATION":       &p.MinJumpDuration,
		"MAX_JUMP_DURATION":       &p.MaxJumpDuration,
		"DEBOUNCE_TIME":           &p.DebounceTime,
		"COMPRESSION_TIMEOUT":     &p.CompressionTimeout,
		"PATTERN_MATCH_THRESHOLD": &p.PatternMatchThreshold,
		"SENSITIVITY":             &p.Sensitivity,
		"NOISE_FLOOR":             &p.NoiseFloor,
		"AXIS_THRESHOLD":          &p.AxisThreshold,
		"SAMPLE_PERIOD":           &p.SamplePeriod,
		"SESSION_SMALL_BREAK":     &c.SessionSmallBreak,
		"SESSION_LONG_BREAK":      &c.SessionLongBreak,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	if dst, ok := c.floatKeys()[key]; ok {
		v, err := parseFloat(key, value)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}

	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_DETECTOR":
		c.MQTTClientIDDetector = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_MOTION":
		c.TopicMotion = value
	case "TOPIC_JUMPS":
		c.TopicJumps = value
	case "TOPIC_STATUS":
		c.TopicStatus = value

	// Detection
	case "DETECTION_STRATEGY":
		s, err := detector.ParseStrategy(value)
		if err != nil {
			return fmt.Errorf("invalid DETECTION_STRATEGY %q: %w", value, err)
		}
		c.DetectionStrategy = s
	case "WINDOW_SIZE":
		v, err := parseInt(key, value)
		if err != nil {
			return err
		}
		c.Detector.WindowSize = v
	case "BUFFER_SIZE":
		v, err := parseInt(key, value)
		if err != nil {
			return err
		}
		c.Detector.BufferSize = v
	case "VERTICAL_AXIS":
		a, err := motion.ParseAxis(strings.ToLower(value))
		if err != nil {
			return fmt.Errorf("invalid VERTICAL_AXIS: %w", err)
		}
		c.Detector.VerticalAxis = a

	// Profiles
	case "PROFILE_BACKEND":
		b, err := store.ParseBackend(strings.ToLower(value))
		if err != nil {
			return err
		}
		c.ProfileBackend = b
	case "PROFILE_PATH":
		c.ProfilePath = value

	// Sample source
	case "SOURCE":
		switch v := strings.ToLower(value); v {
		case SourceMock, SourceSerial, SourceReplay:
			c.Source = v
		default:
			return fmt.Errorf("SOURCE must be mock, serial or replay, got %q", value)
		}
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = uint(v)
	case "REPLAY_FILE":
		c.ReplayFile = value
	case "SAMPLE_INTERVAL_MS":
		v, err := parseInt(key, value)
		if err != nil {
			return err
		}
		c.SampleIntervalMS = v

	// Web Server
	case "WEB_SERVER_PORT":
		v, err := parseInt(key, value)
		if err != nil {
			return err
		}
		c.WebServerPort = v

	// Sessions
	case "GOAL_TYPE":
		c.GoalType = session.GoalType(strings.ToLower(value))
	case "GOAL_COUNT":
		v, err := parseInt(key, value)
		if err != nil {
			return err
		}
		c.GoalCount = v
	case "GOAL_MINUTES":
		v, err := parseInt(key, value)
		if err != nil {
			return err
		}
		c.GoalMinutes = v

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks required fields and cross-field constraints.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.ProfilePath == "" {
		return fmt.Errorf("PROFILE_PATH is required")
	}
	if c.Source == SourceSerial && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required when SOURCE=serial")
	}
	if c.Source == SourceReplay && c.ReplayFile == "" {
		return fmt.Errorf("REPLAY_FILE is required when SOURCE=replay")
	}
	if c.SampleIntervalMS <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL_MS must be > 0, got %d", c.SampleIntervalMS)
	}
	if c.WebServerPort <= 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", c.WebServerPort)
	}
	if c.SessionSmallBreak <= 0 || c.SessionLongBreak < c.SessionSmallBreak {
		return fmt.Errorf("session breaks must satisfy 0 < SESSION_SMALL_BREAK <= SESSION_LONG_BREAK, got %.1f and %.1f",
			c.SessionSmallBreak, c.SessionLongBreak)
	}
	if err := c.Goal().Validate(); err != nil {
		return err
	}
	if _, err := c.DetectorParameters(); err != nil {
		return err
	}
	return nil
}

// DetectorParameters returns the validated detector parameters.
func (c *Config) DetectorParameters() (detector.Parameters, error) {
	if err := c.Detector.Validate(); err != nil {
		return detector.Parameters{}, fmt.Errorf("detector parameters: %w", err)
	}
	return c.Detector, nil
}

// SessionConfig returns rate and break settings for session summaries.
func (c *Config) SessionConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.SmallBreak = c.SessionSmallBreak
	cfg.LongBreak = c.SessionLongBreak
	return cfg
}

// Goal returns the configured session goal.
func (c *Config) Goal() session.Goal {
	return session.Goal{Type: c.GoalType, Count: c.GoalCount, Minutes: c.GoalMinutes}
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads; later calls return nil.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/jump_counter/internal/config"
	"github.com/relabs-tech/jump_counter/internal/detector"
	"github.com/relabs-tech/jump_counter/internal/motion"
	"github.com/relabs-tech/jump_counter/internal/session"
	"github.com/relabs-tech/jump_counter/internal/store"
)

// MotionMessage is the payload on the motion topic.
type MotionMessage struct {
	Device string `json:"device"`
	motion.Sample
}

// JumpEvent is published for every accepted jump.
type JumpEvent struct {
	Device string  `json:"device"`
	Count  int     `json:"count"`
	Rate   float64 `json:"rate"` // jumps per minute
	detector.Result
}

// SessionStatus is the periodic per-device status.
type SessionStatus struct {
	Device       string         `json:"device"`
	Strategy     string         `json:"strategy"`
	Phase        detector.Phase `json:"phase"`
	Count        int            `json:"count"`
	Elapsed      float64        `json:"elapsed"`
	Rate         float64        `json:"rate"`
	GoalProgress float64        `json:"goal_progress"`
	GoalReached  bool           `json:"goal_reached"`
	Stats        detector.Stats `json:"stats"`
}

// idleTimeout ends a device session after this long without samples.
const idleTimeout = 30 * time.Second

type stream struct {
	mu       sync.Mutex
	engine   *detector.Engine
	tracker  *session.Tracker
	lastSeen time.Time
}

// DetectorService owns one detection engine per device. Each engine is only
// touched under its stream lock.
type DetectorService struct {
	strategy   detector.Strategy
	params     detector.Parameters
	sessionCfg session.Config
	goal       session.Goal
	now        func() time.Time

	mu      sync.Mutex
	streams map[string]*stream
}

// NewDetectorService validates the parameters once so that per-device
// engine creation cannot fail later.
func NewDetectorService(strategy detector.Strategy, p detector.Parameters, sessionCfg session.Config, goal session.Goal) (*DetectorService, error) {
	if _, err := detector.New(strategy, p); err != nil {
		return nil, err
	}
	if err := goal.Validate(); err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}
	return &DetectorService{
		strategy:   strategy,
		params:     p,
		sessionCfg: sessionCfg,
		goal:       goal,
		now:        time.Now,
		streams:    make(map[string]*stream),
	}, nil
}

func (s *DetectorService) open(device string, first float64) *stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[device]
	if !ok {
		engine, _ := detector.New(s.strategy, s.params)
		st = &stream{
			engine:  engine,
			tracker: session.NewTracker(s.sessionCfg, first, s.now()),
		}
		s.streams[device] = st
		log.Printf("detector: new session for device %q (%s)", device, s.strategy)
	}
	return st
}

// Handle decodes one motion message and runs it through the device's
// engine. It returns a non-nil event when the sample completed a jump.
func (s *DetectorService) Handle(payload []byte) (*JumpEvent, error) {
	var msg MotionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("detector: motion unmarshal: %w", err)
	}
	return s.Process(msg.Device, msg.Sample), nil
}

// Process feeds one sample for device.
func (s *DetectorService) Process(device string, sample motion.Sample) *JumpEvent {
	st := s.open(device, sample.Timestamp)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.lastSeen = s.now()

	res := st.engine.Process(sample)
	if !res.IsJump {
		st.tracker.Observe(sample.Timestamp)
		return nil
	}
	st.tracker.AddJump(res.Timestamp)
	return &JumpEvent{
		Device: device,
		Count:  st.tracker.Count(),
		Rate:   st.tracker.Rate(),
		Result: res,
	}
}

// Status returns the live status of a device session.
func (s *DetectorService) Status(device string) (SessionStatus, bool) {
	s.mu.Lock()
	st, ok := s.streams[device]
	s.mu.Unlock()
	if !ok {
		return SessionStatus{}, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	sum := st.tracker.Summary()
	return SessionStatus{
		Device:       device,
		Strategy:     s.strategy.String(),
		Phase:        st.engine.Phase(),
		Count:        st.tracker.Count(),
		Elapsed:      st.tracker.Elapsed(),
		Rate:         st.tracker.Rate(),
		GoalProgress: s.goal.Progress(sum),
		GoalReached:  s.goal.Reached(sum),
		Stats:        st.engine.Stats(),
	}, true
}

// Devices lists the devices with an open session, sorted.
func (s *DetectorService) Devices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.streams))
	for d := range s.streams {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Finish closes a device session and returns its summary.
func (s *DetectorService) Finish(device string) (session.Summary, bool) {
	s.mu.Lock()
	st, ok := s.streams[device]
	delete(s.streams, device)
	s.mu.Unlock()
	if !ok {
		return session.Summary{}, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	sum := st.tracker.Summary()
	sum.Device = device
	return sum, true
}

// FinishIdle closes every session that has not seen a sample for idle.
func (s *DetectorService) FinishIdle(idle time.Duration) []session.Summary {
	now := s.now()
	var stale []string
	s.mu.Lock()
	for d, st := range s.streams {
		st.mu.Lock()
		if now.Sub(st.lastSeen) >= idle {
			stale = append(stale, d)
		}
		st.mu.Unlock()
	}
	s.mu.Unlock()

	sort.Strings(stale)
	var out []session.Summary
	for _, d := range stale {
		if sum, ok := s.Finish(d); ok {
			out = append(out, sum)
		}
	}
	return out
}

// detectorParameters applies the latest stored profile on top of the
// configured parameters. A missing or unusable profile leaves them as is.
func detectorParameters(ctx context.Context, cfg *config.Config, profiles store.ProfileStore) (detector.Parameters, error) {
	p, err := cfg.DetectorParameters()
	if err != nil {
		return p, err
	}
	if profiles == nil {
		return p, nil
	}

	prof, err := profiles.LatestProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		log.Println("detector: no calibration profile, using configured thresholds")
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("detector: load profile: %w", err)
	}

	tuned := p.ApplyProfile(prof)
	if err := tuned.Validate(); err != nil {
		log.Printf("detector: ignoring profile %s: %v", prof.ID, err)
		return p, nil
	}
	log.Printf("detector: using profile %s (threshold %.2fg, debounce %.2fs)",
		prof.ID, tuned.Sensitivity, tuned.DebounceTime)
	return tuned, nil
}

func publishJSON(client mqtt.Client, topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("json marshal error: %v", err)
		return
	}
	token := client.Publish(topic, 0, retained, payload)
	token.Wait()
	if token.Error() != nil {
		log.Printf("publish to %s failed: %v", topic, token.Error())
	}
}

// RunDetector subscribes to motion samples and publishes jumps, per-device
// status and finished session summaries.
func RunDetector() error {
	cfg := config.Get()
	ctx := context.Background()

	profiles, err := store.Open(cfg.ProfileBackend, cfg.ProfilePath)
	if err != nil {
		return err
	}
	defer profiles.Close()

	params, err := detectorParameters(ctx, cfg, profiles)
	if err != nil {
		return err
	}
	svc, err := NewDetectorService(cfg.DetectionStrategy, params, cfg.SessionConfig(), cfg.Goal())
	if err != nil {
		return err
	}
	sessions, _ := profiles.(store.SessionStore)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDetector)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("detector: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicMotion, 0, func(c mqtt.Client, msg mqtt.Message) {
		ev, err := svc.Handle(msg.Payload())
		if err != nil {
			log.Printf("%v", err)
			return
		}
		if ev != nil {
			publishJSON(c, cfg.TopicJumps, false, ev)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("detector: subscribed to %s", cfg.TopicMotion)

	finish := func(sums []session.Summary) {
		for _, sum := range sums {
			log.Printf("detector: session %s on %q ended: %d jumps in %.1fs",
				sum.ID, sum.Device, sum.JumpCount, sum.Duration)
			publishJSON(client, cfg.TopicStatus+"/summary", false, sum)
			if sessions == nil {
				continue
			}
			if err := sessions.SaveSession(ctx, sum); err != nil {
				log.Printf("detector: save session: %v", err)
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, d := range svc.Devices() {
				if st, ok := svc.Status(d); ok {
					publishJSON(client, cfg.TopicStatus, true, st)
				}
			}
			finish(svc.FinishIdle(idleTimeout))

		case <-sigCh:
			log.Println("detector: shutting down")
			var sums []session.Summary
			for _, d := range svc.Devices() {
				if sum, ok := svc.Finish(d); ok {
					sums = append(sums, sum)
				}
			}
			finish(sums)
			client.Disconnect(250)
			return nil
		}
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/jump_counter/internal/calibration"
	"github.com/relabs-tech/jump_counter/internal/motion"
	"github.com/relabs-tech/jump_counter/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocket message types
type WSMessage struct {
	Action  string                      `json:"action"` // start, sample, cancel
	Samples []motion.AccelerationSample `json:"samples,omitempty"`
}

type WSResponse struct {
	Type          string               `json:"type"` // status, complete, error
	State         string               `json:"state,omitempty"`
	Progress      float64              `json:"progress"`
	Instructions  string               `json:"instructions,omitempty"`
	JumpsDetected int                  `json:"jumps_detected"`
	BaselineNoise float64              `json:"baseline_noise,omitempty"`
	Profile       *calibration.Profile `json:"profile,omitempty"`
	Message       string               `json:"message,omitempty"`
}

// CalibrationHandler runs one calibration engine per websocket connection
// and stores the resulting profile.
type CalibrationHandler struct {
	Profiles store.ProfileStore
	Config   calibration.Config
}

// NewCalibrationHandler uses the default calibration timings.
func NewCalibrationHandler(profiles store.ProfileStore) *CalibrationHandler {
	return &CalibrationHandler{Profiles: profiles, Config: calibration.DefaultConfig()}
}

func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("calibration: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	engine := calibration.NewEngine(h.Config)
	saved := false

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("calibration: websocket read error: %v", err)
			}
			return
		}

		var resp WSResponse
		switch msg.Action {
		case "start":
			engine.Start()
			saved = false
			log.Println("calibration: started")
			resp = status(engine)

		case "sample":
			for _, s := range msg.Samples {
				if engine.Add(s).Terminal() {
					break
				}
			}
			resp = h.result(r.Context(), engine, &saved)

		case "cancel":
			engine.Cancel()
			log.Println("calibration: cancelled by user")
			if err := conn.WriteJSON(status(engine)); err != nil {
				log.Printf("calibration: websocket write error: %v", err)
			}
			return

		default:
			resp = WSResponse{Type: "error", Message: "unknown action: " + msg.Action}
		}

		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("calibration: websocket write error: %v", err)
			return
		}
	}
}

func status(e *calibration.Engine) WSResponse {
	return WSResponse{
		Type:          "status",
		State:         e.State().String(),
		Progress:      e.Progress(),
		Instructions:  e.Instructions(),
		JumpsDetected: e.JumpsDetected(),
		BaselineNoise: e.BaselineNoise(),
	}
}

// result reports the engine state after a batch, saving a completed
// profile once.
func (h *CalibrationHandler) result(ctx context.Context, e *calibration.Engine, saved *bool) WSResponse {
	resp := status(e)
	switch e.State() {
	case calibration.Failed:
		resp.Type = "error"
		resp.Message = e.Reason()
		log.Printf("calibration: failed: %s", e.Reason())

	case calibration.Completed:
		p, _ := e.Profile()
		resp.Type = "complete"
		resp.Profile = &p
		if *saved || h.Profiles == nil {
			break
		}
		if err := h.Profiles.SaveProfile(ctx, p); err != nil {
			log.Printf("calibration: save profile: %v", err)
			resp.Type = "error"
			resp.Message = "profile could not be saved: " + err.Error()
			break
		}
		*saved = true
		log.Printf("calibration: saved profile %s (threshold %.2fg, confidence %.2f)",
			p.ID, p.OptimalThreshold, p.Confidence)
	}
	return resp
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/jump_counter/internal/config"
	"github.com/relabs-tech/jump_counter/internal/store"
)

// jumpHub fans jump events out to websocket clients. Writes happen under
// the hub lock, so each connection has a single writer.
type jumpHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newJumpHub() *jumpHub {
	return &jumpHub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *jumpHub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *jumpHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.Close()
}

func (h *jumpHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.SetWriteDeadline(time.Now().Add(time.Second))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("web: dropping jump feed client: %v", err)
			delete(h.clients, c)
			c.Close()
		}
	}
}

func (h *jumpHub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	h.add(conn)
	// Drain reads so close frames are processed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(conn)
			return
		}
	}
}

// statusBoard keeps the latest status per device.
type statusBoard struct {
	mu     sync.RWMutex
	latest map[string]SessionStatus
}

func (b *statusBoard) update(payload []byte) error {
	var st SessionStatus
	if err := json.Unmarshal(payload, &st); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latest == nil {
		b.latest = make(map[string]SessionStatus)
	}
	b.latest[st.Device] = st
	return nil
}

func (b *statusBoard) snapshot() []SessionStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]SessionStatus, 0, len(b.latest))
	for _, st := range b.latest {
		out = append(out, st)
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// newWebMux wires the HTTP API. sessions may be nil when the profile
// backend does not keep sessions.
func newWebMux(profiles store.ProfileStore, sessions store.SessionStore, hub *jumpHub, board *statusBoard, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, board.snapshot())
	})

	mux.HandleFunc("GET /api/profiles", func(w http.ResponseWriter, r *http.Request) {
		list, err := profiles.ListProfiles(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, list)
	})

	mux.HandleFunc("GET /api/profiles/latest", func(w http.ResponseWriter, r *http.Request) {
		p, err := profiles.LatestProfile(r.Context())
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "no profile yet", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, p)
	})

	mux.HandleFunc("DELETE /api/profiles/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, "invalid profile id", http.StatusBadRequest)
			return
		}
		err = profiles.DeleteProfile(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/sessions", func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			http.Error(w, "session history needs the sqlite backend", http.StatusNotImplemented)
			return
		}
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}
		list, err := sessions.ListSessions(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, list)
	})

	mux.Handle("/ws/calibration", NewCalibrationHandler(profiles))
	mux.HandleFunc("/ws/jumps", hub.serveWS)

	// Static files from ./web as the root
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

// RunWeb serves the calibration UI, the live jump feed and the history API.
func RunWeb() error {
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profiles, err := store.Open(cfg.ProfileBackend, cfg.ProfilePath)
	if err != nil {
		return err
	}
	defer profiles.Close()
	sessions, _ := profiles.(store.SessionStore)

	hub := newJumpHub()
	board := &statusBoard{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	subs := map[string]mqtt.MessageHandler{
		cfg.TopicJumps: func(_ mqtt.Client, msg mqtt.Message) {
			hub.broadcast(msg.Payload())
		},
		cfg.TopicStatus: func(_ mqtt.Client, msg mqtt.Message) {
			if err := board.update(msg.Payload()); err != nil {
				log.Printf("web: status unmarshal error: %v", err)
			}
		},
	}
	for topic, handler := range subs {
		token := client.Subscribe(topic, 0, handler)
		token.Wait()
		if token.Error() != nil {
			return fmt.Errorf("web: subscribe %s: %w", topic, token.Error())
		}
		log.Printf("web: subscribed to %s", topic)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler: newWebMux(profiles, sessions, hub, board, "web"),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("web server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("web: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/jump_counter/internal/config"
	"github.com/relabs-tech/jump_counter/internal/session"
)

func printJump(w io.Writer, payload []byte) error {
	var ev JumpEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	fmt.Fprintf(w, "[JUMP] device=%s #%-5d t=%8.2fs conf=%.2f rate=%5.1f/min",
		ev.Device, ev.Count, ev.Timestamp, ev.Confidence, ev.Rate)
	if c := ev.Characteristics; c != nil {
		fmt.Fprintf(w, " peak=%.2fg air=%.2fs height=%.1fcm quality=%s",
			c.PeakAcceleration, c.AirTime, c.JumpHeight, c.Quality)
	}
	fmt.Fprintln(w)
	return nil
}

func printSummary(w io.Writer, payload []byte) error {
	var s session.Summary
	if err := json.Unmarshal(payload, &s); err != nil {
		return err
	}
	fmt.Fprintf(w, "[SESSION] device=%s jumps=%d duration=%.1fs avg=%.1f/min peak=%.1f/min breaks=%d/%d\n",
		s.Device, s.JumpCount, s.Duration, s.AverageRate, s.PeakRate, s.SmallBreaks, s.LongBreaks)
	return nil
}

// RunConsoleMQTT prints jump events and finished sessions until interrupted.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	subs := []struct {
		topic string
		print func(io.Writer, []byte) error
	}{
		{cfg.TopicJumps, printJump},
		{cfg.TopicStatus + "/summary", printSummary},
	}
	for _, s := range subs {
		printFn := s.print
		topic := s.topic
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			if err := printFn(os.Stdout, msg.Payload()); err != nil {
				log.Printf("console: %s unmarshal error: %v", topic, err)
			}
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("console: subscribed to %s", topic)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

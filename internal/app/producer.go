package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/jump_counter/internal/config"
	"github.com/relabs-tech/jump_counter/internal/motion"
	"github.com/relabs-tech/jump_counter/internal/recording"
	"github.com/relabs-tech/jump_counter/internal/source"
)

// openSource returns the configured sample source. Paced sources are read
// on the producer ticker; the serial source blocks until the device sends.
func openSource(cfg *config.Config) (src motion.Source, closeFn func() error, paced bool, err error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case config.SourceMock:
		return source.NewMockSource(), noop, true, nil

	case config.SourceSerial:
		lines, err := source.OpenSerial(source.SerialOptions{
			PortName: cfg.SerialPort,
			BaudRate: cfg.SerialBaudRate,
		})
		if err != nil {
			return nil, nil, false, err
		}
		return lines, lines.Close, false, nil

	case config.SourceReplay:
		recs, err := recording.ReadFile(cfg.ReplayFile)
		if err != nil {
			return nil, nil, false, fmt.Errorf("producer: replay: %w", err)
		}
		log.Printf("producer: replaying %d samples from %s", len(recs), cfg.ReplayFile)
		return source.NewSlice(recording.Samples(recs)), noop, true, nil
	}
	return nil, nil, false, fmt.Errorf("producer: unknown source %q", cfg.Source)
}

// RunProducer publishes samples from the configured source to the motion
// topic until the source is exhausted.
func RunProducer() error {
	cfg := config.Get()

	src, closeSrc, paced, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Printf("producer: connected to MQTT, publishing %s samples to %s", cfg.Source, cfg.TopicMotion)

	var tick <-chan time.Time
	if paced {
		ticker := time.NewTicker(time.Duration(cfg.SampleIntervalMS) * time.Millisecond)
		defer ticker.Stop()
		tick = ticker.C
	}

	published := 0
	for {
		if tick != nil {
			<-tick
		}

		s, err := src.Next()
		if errors.Is(err, io.EOF) {
			log.Printf("producer: source exhausted after %d samples", published)
			return nil
		}
		if errors.Is(err, source.ErrMalformedLine) {
			log.Printf("producer: skipping %v", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("producer: source: %w", err)
		}

		publishJSON(client, cfg.TopicMotion, false, MotionMessage{
			Device: cfg.MQTTClientIDProducer,
			Sample: s,
		})
		published++
		if published%1000 == 0 {
			log.Printf("producer: published %d samples", published)
		}
	}
}

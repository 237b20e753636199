package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/go-logr/logr"
)

// Publisher is the part of an mqtt.Client the Streamer uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Streamer that streams RGB data frames to an ledrx device.
type Streamer struct {
	client    Publisher
	topic     string
	animation Animation
	frameRate float64
	logger    logr.Logger
}

// NewStreamer creates an instance of a Streamer.
func NewStreamer(client Publisher, topic string, frameRate float64, animation Animation,
	logger logr.Logger) *Streamer {

	s := new(Streamer)
	s.client = client
	s.topic = topic
	s.frameRate = frameRate
	s.animation = animation
	s.logger = logger
	return s
}

// SendFrame sends a frame as binary over MQTT to an ledrx device.
func (s *Streamer) SendFrame(runtimeMs int64) error {
	f := s.animation.CalculateFrame(runtimeMs)
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}

	token := s.client.Publish(s.topic, 0, false, b)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", s.topic, token.Error())
	}
	return nil
}

// Run causes the Streamer to send Frames at the frame rate until ctx is done.
func (s *Streamer) Run(ctx context.Context) {
	start := time.Now()
	publishTimer := time.NewTicker(time.Duration(float64(time.Second) / s.frameRate))
	defer publishTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-publishTimer.C:
			if err := s.SendFrame(time.Since(start).Milliseconds()); err != nil {
				s.logger.Error(err, "sending frame")
			}
		}
	}
}

// Package events publishes ride lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"biketaxi/internal/service"
)

const publishTimeout = 2 * time.Second

// RideEventSink publishes notifications as JSON events on a Kafka topic.
// It implements service.NotificationSink; delivery is best effort.
type RideEventSink struct {
	writer *kafka.Writer
}

// NewRideEventSink creates a sink writing to the given brokers and topic.
func NewRideEventSink(brokers []string, topic string) *RideEventSink {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &RideEventSink{writer: w}
}

type rideEvent struct {
	Channel     string    `json:"channel"`
	RecipientID string    `json:"recipient_id"`
	Event       string    `json:"event"`
	Payload     any       `json:"payload"`
	At          time.Time `json:"at"`
}

// Notify implements service.NotificationSink. Publishing runs on a
// background goroutine so a stalled broker never delays the state
// transition that produced the event; failures are logged and dropped.
func (s *RideEventSink) Notify(_ context.Context, channel service.Channel, id string, event string, payload any) {
	value, err := json.Marshal(rideEvent{
		Channel:     string(channel),
		RecipientID: id,
		Event:       event,
		Payload:     payload,
		At:          time.Now(),
	})
	if err != nil {
		return
	}

	go s.publish(id, value)
}

func (s *RideEventSink) publish(key string, value []byte) {
	// Detached context: request cancellation must not cut off a
	// fire-and-forget publish mid-flight.
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		log.Printf("kafka publish failed: %v", err)
	}
}

// Close flushes and closes the underlying writer.
func (s *RideEventSink) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}

var _ service.NotificationSink = (*RideEventSink)(nil)

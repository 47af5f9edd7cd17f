// Package events publishes trip-change notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event types.
const (
	TripSaved   = "trip.saved"
	TripDeleted = "trip.deleted"
)

// TripEvent is the JSON payload of a trip-change message. Messages are keyed
// by trip ID so changes to one trip stay ordered within a partition.
type TripEvent struct {
	Type       string    `json:"type"`
	TripID     uuid.UUID `json:"trip_id"`
	OwnerID    string    `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends trip events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev TripEvent) error
}

// Nop discards every event. Used when no brokers are configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, TripEvent) error { return nil }

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes trip events to a single topic.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher builds a synchronous, hash-balanced writer for topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	})
}

func newKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

// Publish encodes ev and writes it keyed by trip ID.
func (p *KafkaPublisher) Publish(ctx context.Context, ev TripEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events.KafkaPublisher.Publish: encode: %w", err)
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.TripID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("events.KafkaPublisher.Publish: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

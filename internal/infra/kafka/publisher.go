// File: internal/infra/kafka/publisher.go
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"seo-article-agent/internal/domain/ports/adapter"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ adapter.JobEventSink = (*EventPublisher)(nil)

// EventPublisher writes job lifecycle events to a topic, keyed by job id so
// events of one job stay ordered within a partition.
type EventPublisher struct {
	w MessageWriter
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewEventPublisher(w MessageWriter) *EventPublisher {
	return &EventPublisher{w: w}
}

func (p *EventPublisher) Publish(ctx context.Context, ev adapter.JobEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal job event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.JobID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "trace_id", Value: []byte(ev.TraceID)},
		},
		Time: ev.At,
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish job event %s/%s: %w", ev.JobID, ev.Type, err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.w.Close()
}

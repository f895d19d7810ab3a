package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"rentcar-backoffice/internal/telemetry"
)

// KafkaProducer ships telemetry events to a Kafka topic as JSON. A separate
// worker drains the topic into Loki so the API server never talks to Loki
// directly.
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a producer writing to topic. Returns nil when
// brokers or topic are unset, which callers treat as "Kafka disabled".
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Emit serializes the event as JSON and writes it to the topic with a short
// timeout so a slow broker cannot stall the caller.
func (p *KafkaProducer) Emit(ctx context.Context, event telemetry.Event) error {
	if p == nil || p.writer == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.writer.WriteMessages(writeCtx, kafka.Message{Value: payload})
}

// Close closes the Kafka writer. Safe to call on a nil producer.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

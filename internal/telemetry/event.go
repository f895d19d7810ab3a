package telemetry

import (
	"context"
	"time"
)

// Event is a single operational event emitted by the application, such as a
// login attempt or a branch mutation. Events flow to an external sink (OTLP
// collector or Kafka) without blocking the request that produced them.
type Event struct {
	ActorID   string            `json:"actor_id"`
	EventType string            `json:"event_type"`
	Source    string            `json:"source"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Emitter ships events to a telemetry sink.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
}

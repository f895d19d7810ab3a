package telemetry

import (
	"context"
	"log/slog"
	"time"
)

// AsyncEmitter wraps an Emitter and emits on a background goroutine so request
// handling never waits on the telemetry sink. Failures are logged and dropped.
type AsyncEmitter struct {
	next    Emitter
	logger  *slog.Logger
	timeout time.Duration
}

func NewAsyncEmitter(next Emitter, logger *slog.Logger) *AsyncEmitter {
	return &AsyncEmitter{next: next, logger: logger, timeout: 5 * time.Second}
}

// EmitAsync hands the event to the underlying emitter without blocking the
// caller. The event gets its own context so it survives request cancellation.
func (a *AsyncEmitter) EmitAsync(e Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.Emit(ctx, e); err != nil {
			a.logger.Warn("telemetry emit failed", "event_type", e.EventType, "error", err)
		}
	}()
}

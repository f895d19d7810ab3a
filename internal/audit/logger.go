package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rentcar-backoffice/internal/audit/domain"
	"rentcar-backoffice/internal/audit/repository"
	"rentcar-backoffice/internal/telemetry"
)

// Recorder records audit events. Recording is best effort: a failure is
// logged but never fails the operation being audited.
type Recorder interface {
	Record(ctx context.Context, actorID, action, resource, ip string, metadata map[string]string)
}

// Logger persists audit entries and forwards them to telemetry when an
// emitter is configured.
type Logger struct {
	repo    repository.Repository
	emitter *telemetry.AsyncEmitter
	logger  *slog.Logger
	nowF    func() time.Time
}

func NewLogger(repo repository.Repository, emitter *telemetry.AsyncEmitter, logger *slog.Logger) *Logger {
	return &Logger{
		repo:    repo,
		emitter: emitter,
		logger:  logger,
		nowF:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *Logger) Record(ctx context.Context, actorID, action, resource, ip string, metadata map[string]string) {
	entry := &domain.AuditLog{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: l.nowF(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.logger.Error("audit write failed", "action", action, "actor_id", actorID, "error", err)
	}
	if l.emitter != nil {
		l.emitter.EmitAsync(telemetry.Event{
			ActorID:   actorID,
			EventType: action,
			Source:    "rentcar-backoffice",
			Metadata:  metadata,
			CreatedAt: entry.CreatedAt,
		})
	}
}

package repository

import (
	"context"

	"rentcar-backoffice/internal/audit/domain"
)

// Repository defines persistence for audit log entries.
type Repository interface {
	Create(ctx context.Context, l *domain.AuditLog) error
	// List returns entries ordered newest first, at most limit rows starting
	// at offset.
	List(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error)
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"rentcar-backoffice/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, l *domain.AuditLog) error {
	meta, err := json.Marshal(l.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor_id, action, resource, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.ActorID, l.Action, l.Resource, l.IP, meta, l.CreatedAt)
	return err
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor_id, action, resource, ip, metadata, created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		var meta []byte
		if err := rows.Scan(&l.ID, &l.ActorID, &l.Action, &l.Resource, &l.IP, &meta, &l.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &l.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentcar-backoffice/internal/logintoken/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a login token repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the login token. The token must have ID and JTI set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.LoginToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO login_tokens (id, user_id, jti, is_active, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.UserID, t.JTI, t.IsActive, t.ExpiresAt, t.CreatedAt)
	return err
}

// GetActiveByJTI returns the active, unexpired token for jti, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetActiveByJTI(ctx context.Context, jti string, now time.Time) (*domain.LoginToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, jti, is_active, expires_at, created_at
		 FROM login_tokens
		 WHERE jti = $1 AND is_active AND expires_at > $2`,
		jti, now)
	var t domain.LoginToken
	err := row.Scan(&t.ID, &t.UserID, &t.JTI, &t.IsActive, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// DeactivateByJTI marks the token with the given jti inactive.
func (r *PostgresRepository) DeactivateByJTI(ctx context.Context, jti string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE login_tokens SET is_active = FALSE WHERE jti = $1`, jti)
	return err
}

// DeactivateAllByUser marks every active token of the user inactive.
func (r *PostgresRepository) DeactivateAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE login_tokens SET is_active = FALSE WHERE user_id = $1 AND is_active`, userID)
	return err
}

// DeactivateExpired marks expired tokens inactive and returns the affected row count.
func (r *PostgresRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE login_tokens SET is_active = FALSE WHERE is_active AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

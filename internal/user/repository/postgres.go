package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentcar-backoffice/internal/user/domain"
)

const userColumns = `id, first_name, last_name, email, username, password_hash, role, tfa_enabled,
	tfa_code_hash, tfa_confirm_code_hash, tfa_expires_at, tfa_is_completed,
	reset_code_hash, reset_expires_at, reset_is_completed,
	is_active, is_deleted, created_at, created_by, updated_at, updated_by, deleted_at, deleted_by`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND NOT is_deleted`, id)
	return scanUser(row)
}

// GetByUsernameOrEmail returns the user whose username or email exactly matches
// identifier, or nil if not found.
func (r *PostgresRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE (username = $1 OR email = $1) AND NOT is_deleted`, identifier)
	return scanUser(row)
}

// ExistsByUsername reports whether a live user with the given username exists.
func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND NOT is_deleted)`, username).Scan(&exists)
	return exists, err
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		userArgs(u)...)
	return err
}

// Update rewrites the existing user row, including challenge and reset state.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	args := userArgs(u)
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET
			first_name = $2, last_name = $3, email = $4, username = $5, password_hash = $6,
			role = $7, tfa_enabled = $8,
			tfa_code_hash = $9, tfa_confirm_code_hash = $10, tfa_expires_at = $11, tfa_is_completed = $12,
			reset_code_hash = $13, reset_expires_at = $14, reset_is_completed = $15,
			is_active = $16, is_deleted = $17, created_at = $18, created_by = $19,
			updated_at = $20, updated_by = $21, deleted_at = $22, deleted_by = $23
		 WHERE id = $1`,
		args...)
	return err
}

func userArgs(u *domain.User) []any {
	var tfaCode, tfaConfirm sql.NullString
	var tfaExpires sql.NullTime
	var tfaCompleted sql.NullBool
	if c := u.TFAChallenge; c != nil {
		tfaCode = sql.NullString{String: c.CodeHash, Valid: true}
		tfaConfirm = sql.NullString{String: c.ConfirmCodeHash, Valid: true}
		tfaExpires = sql.NullTime{Time: c.ExpiresAt, Valid: true}
		tfaCompleted = sql.NullBool{Bool: c.IsCompleted, Valid: true}
	}
	var resetCode sql.NullString
	var resetExpires sql.NullTime
	var resetCompleted sql.NullBool
	if p := u.PasswordReset; p != nil {
		resetCode = sql.NullString{String: p.CodeHash, Valid: true}
		resetExpires = sql.NullTime{Time: p.ExpiresAt, Valid: true}
		resetCompleted = sql.NullBool{Bool: p.IsCompleted, Valid: true}
	}
	return []any{
		u.ID, u.FirstName, u.LastName, u.Email, u.Username, u.PasswordHash, string(u.Role), u.TFAEnabled,
		tfaCode, tfaConfirm, tfaExpires, tfaCompleted,
		resetCode, resetExpires, resetCompleted,
		u.IsActive, u.IsDeleted, u.CreatedAt, u.CreatedBy,
		nullTime(u.UpdatedAt), nullString(u.UpdatedBy), nullTime(u.DeletedAt), nullString(u.DeletedBy),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role string
	var tfaCode, tfaConfirm sql.NullString
	var tfaExpires sql.NullTime
	var tfaCompleted sql.NullBool
	var resetCode sql.NullString
	var resetExpires sql.NullTime
	var resetCompleted sql.NullBool
	var updatedAt, deletedAt sql.NullTime
	var updatedBy, deletedBy sql.NullString

	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Username, &u.PasswordHash, &role, &u.TFAEnabled,
		&tfaCode, &tfaConfirm, &tfaExpires, &tfaCompleted,
		&resetCode, &resetExpires, &resetCompleted,
		&u.IsActive, &u.IsDeleted, &u.CreatedAt, &u.CreatedBy,
		&updatedAt, &updatedBy, &deletedAt, &deletedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	// Partial challenge state is invalid; expose it only when all four fields are present.
	if tfaCode.Valid && tfaConfirm.Valid && tfaExpires.Valid && tfaCompleted.Valid {
		u.TFAChallenge = &domain.TFAChallenge{
			CodeHash:        tfaCode.String,
			ConfirmCodeHash: tfaConfirm.String,
			ExpiresAt:       tfaExpires.Time,
			IsCompleted:     tfaCompleted.Bool,
		}
	}
	if resetCode.Valid && resetExpires.Valid && resetCompleted.Valid {
		u.PasswordReset = &domain.PasswordReset{
			CodeHash:    resetCode.String,
			ExpiresAt:   resetExpires.Time,
			IsCompleted: resetCompleted.Bool,
		}
	}
	if updatedAt.Valid {
		u.UpdatedAt = &updatedAt.Time
	}
	if updatedBy.Valid {
		u.UpdatedBy = &updatedBy.String
	}
	if deletedAt.Valid {
		u.DeletedAt = &deletedAt.Time
	}
	if deletedBy.Valid {
		u.DeletedBy = &deletedBy.String
	}
	return &u, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

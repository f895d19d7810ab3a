package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentcar-backoffice/internal/branch/domain"
)

const branchColumns = `id, name, city, district, full_address, phone_number1, phone_number2,
	is_active, is_deleted, created_at, created_by, updated_at, updated_by, deleted_at, deleted_by`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the branch for id, or nil if not found or soft deleted.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE id = $1 AND NOT is_deleted`, id)
	return scanBranch(row)
}

// ExistsByName reports whether a live branch named name exists, excluding excludeID.
func (r *PostgresRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM branches WHERE name = $1 AND id <> $2 AND NOT is_deleted)`,
		name, excludeID).Scan(&exists)
	return exists, err
}

// List returns live branches with creator and updater display names, ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Detail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.name, b.city, b.district, b.full_address, b.phone_number1, b.phone_number2,
			b.is_active, b.is_deleted, b.created_at, b.created_by, b.updated_at, b.updated_by,
			b.deleted_at, b.deleted_by,
			COALESCE(TRIM(cu.first_name || ' ' || cu.last_name), ''),
			COALESCE(TRIM(uu.first_name || ' ' || uu.last_name), '')
		 FROM branches b
		 LEFT JOIN users cu ON cu.id = b.created_by
		 LEFT JOIN users uu ON uu.id = b.updated_by
		 WHERE NOT b.is_deleted
		 ORDER BY b.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*domain.Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// Create persists the branch. The branch must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, b *domain.Branch) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO branches (`+branchColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		branchArgs(b)...)
	return err
}

// Update rewrites the existing branch row, including soft delete state.
func (r *PostgresRepository) Update(ctx context.Context, b *domain.Branch) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE branches SET
			name = $2, city = $3, district = $4, full_address = $5,
			phone_number1 = $6, phone_number2 = $7,
			is_active = $8, is_deleted = $9, created_at = $10, created_by = $11,
			updated_at = $12, updated_by = $13, deleted_at = $14, deleted_by = $15
		 WHERE id = $1`,
		branchArgs(b)...)
	return err
}

func branchArgs(b *domain.Branch) []any {
	return []any{
		b.ID, b.Name, b.Address.City, b.Address.District, b.Address.FullAddress,
		b.Address.Phone1, nullIfEmpty(b.Address.Phone2),
		b.IsActive, b.IsDeleted, b.CreatedAt, b.CreatedBy,
		nullTime(b.UpdatedAt), nullString(b.UpdatedBy), nullTime(b.DeletedAt), nullString(b.DeletedBy),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBranch(row rowScanner) (*domain.Branch, error) {
	var b domain.Branch
	if err := scanBranchInto(row, &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func scanDetail(row rowScanner) (*domain.Detail, error) {
	var d domain.Detail
	var phone2 sql.NullString
	var updatedAt, deletedAt sql.NullTime
	var updatedBy, deletedBy sql.NullString
	err := row.Scan(
		&d.ID, &d.Name, &d.Address.City, &d.Address.District, &d.Address.FullAddress,
		&d.Address.Phone1, &phone2,
		&d.IsActive, &d.IsDeleted, &d.CreatedAt, &d.CreatedBy,
		&updatedAt, &updatedBy, &deletedAt, &deletedBy,
		&d.CreatedByName, &d.UpdatedByName,
	)
	if err != nil {
		return nil, err
	}
	d.Address.Phone2 = phone2.String
	applyNullables(&d.Branch, updatedAt, updatedBy, deletedAt, deletedBy)
	return &d, nil
}

func scanBranchInto(row rowScanner, b *domain.Branch) error {
	var phone2 sql.NullString
	var updatedAt, deletedAt sql.NullTime
	var updatedBy, deletedBy sql.NullString
	err := row.Scan(
		&b.ID, &b.Name, &b.Address.City, &b.Address.District, &b.Address.FullAddress,
		&b.Address.Phone1, &phone2,
		&b.IsActive, &b.IsDeleted, &b.CreatedAt, &b.CreatedBy,
		&updatedAt, &updatedBy, &deletedAt, &deletedBy,
	)
	if err != nil {
		return err
	}
	b.Address.Phone2 = phone2.String
	applyNullables(b, updatedAt, updatedBy, deletedAt, deletedBy)
	return nil
}

func applyNullables(b *domain.Branch, updatedAt sql.NullTime, updatedBy sql.NullString, deletedAt sql.NullTime, deletedBy sql.NullString) {
	if updatedAt.Valid {
		b.UpdatedAt = &updatedAt.Time
	}
	if updatedBy.Valid {
		b.UpdatedBy = &updatedBy.String
	}
	if deletedAt.Valid {
		b.DeletedAt = &deletedAt.Time
	}
	if deletedBy.Valid {
		b.DeletedBy = &deletedBy.String
	}
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
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

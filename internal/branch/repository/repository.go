package repository

import (
	"context"

	"rentcar-backoffice/internal/branch/domain"
)

// Repository defines persistence for branches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
	// ExistsByName reports whether a live branch with the given name exists,
	// excluding the branch with excludeID (pass "" for none).
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	// List returns live branches with creator and updater display names,
	// ordered by name.
	List(ctx context.Context) ([]*domain.Detail, error)
	Create(ctx context.Context, b *domain.Branch) error
	Update(ctx context.Context, b *domain.Branch) error
}

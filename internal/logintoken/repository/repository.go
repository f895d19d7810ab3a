package repository

import (
	"context"
	"time"

	"rentcar-backoffice/internal/logintoken/domain"
)

// Repository defines persistence for login tokens.
type Repository interface {
	Create(ctx context.Context, t *domain.LoginToken) error
	// GetActiveByJTI returns the active, unexpired token with the given jti,
	// or nil if there is none.
	GetActiveByJTI(ctx context.Context, jti string, now time.Time) (*domain.LoginToken, error)
	// DeactivateByJTI marks the token with the given jti inactive.
	DeactivateByJTI(ctx context.Context, jti string) error
	// DeactivateAllByUser marks every active token of the user inactive.
	DeactivateAllByUser(ctx context.Context, userID string) error
	// DeactivateExpired marks every token past its expiry inactive and
	// returns how many rows changed.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

package middleware

import (
	"context"

	"rentcar-backoffice/internal/security"
)

type ctxKey int

const identityKey ctxKey = 0

// WithIdentity returns a context carrying the validated caller identity.
func WithIdentity(ctx context.Context, id *security.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller identity stored by the auth middleware.
func IdentityFrom(ctx context.Context) (*security.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*security.Identity)
	return id, ok
}

package authz

import "context"

// Evaluator decides whether a role may perform an action on a resource.
type Evaluator interface {
	// Allow returns true when role may perform action on resource.
	Allow(ctx context.Context, role, action, resource string) (bool, error)
}

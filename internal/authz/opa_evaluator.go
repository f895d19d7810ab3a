package authz

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const policyQuery = "data.rentcar.authz.allow"

// Default Rego policy: admins can do everything, staff may only read branches.
const defaultRegoPolicy = `package rentcar.authz

default allow = false

allow if {
	input.role == "admin"
}

allow if {
	input.role == "staff"
	input.resource == "branches"
	input.action == "read"
}
`

// OPAEvaluator evaluates role permissions using an in-process OPA Rego policy.
// The policy is compiled once at construction.
type OPAEvaluator struct {
	compiler *ast.Compiler
}

// NewOPAEvaluator compiles the given Rego policy, or the built-in default when
// policy is empty. The policy must define data.rentcar.authz.allow.
func NewOPAEvaluator(policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = defaultRegoPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"authz.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile authz policy: %w", err)
	}
	return &OPAEvaluator{compiler: compiler}, nil
}

// Allow evaluates the policy for role performing action on resource.
func (e *OPAEvaluator) Allow(ctx context.Context, role, action, resource string) (bool, error) {
	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(e.compiler),
		rego.Input(map[string]interface{}{
			"role":     role,
			"action":   action,
			"resource": resource,
		}),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval authz policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("authz policy returned non-boolean result")
	}
	return allowed, nil
}

// HealthCheck verifies the compiled policy evaluates.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	_, err := e.Allow(ctx, "admin", "read", "branches")
	return err
}

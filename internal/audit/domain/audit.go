package domain

import "time"

// AuditLog records who did what to which resource. Rows are append-only.
type AuditLog struct {
	ID        string
	ActorID   string
	Action    string
	Resource  string
	IP        string
	Metadata  map[string]string
	CreatedAt time.Time
}

// Actions recorded by the back office.
const (
	ActionLoginSucceeded = "auth.login.succeeded"
	ActionLoginFailed    = "auth.login.failed"
	ActionTFAIssued      = "auth.tfa.issued"
	ActionTFACompleted   = "auth.tfa.completed"
	ActionTFAFailed      = "auth.tfa.failed"
	ActionPasswordForgot = "auth.password.forgot"
	ActionPasswordReset  = "auth.password.reset"
	ActionLogout         = "auth.logout"
	ActionBranchCreated  = "branch.created"
	ActionBranchUpdated  = "branch.updated"
	ActionBranchDeleted  = "branch.deleted"
)

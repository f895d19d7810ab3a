package server

import (
	"log/slog"
	"net/http"

	audithandler "rentcar-backoffice/internal/audit/handler"
	authhandler "rentcar-backoffice/internal/auth/handler"
	"rentcar-backoffice/internal/authz"
	branchhandler "rentcar-backoffice/internal/branch/handler"
	healthhandler "rentcar-backoffice/internal/health/handler"
	"rentcar-backoffice/internal/server/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth   *authhandler.Handler
	Branch *branchhandler.Handler
	Audit  *audithandler.Handler
	Health *healthhandler.Handler
}

// NewRouter builds the HTTP route table. Mutating branch routes and the audit
// log are permission gated; read access to branches is open to any
// authenticated role the policy allows.
func NewRouter(h Handlers, auth *middleware.Authenticator, eval authz.Evaluator, logger *slog.Logger, corsOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Health.Health)

	mux.HandleFunc("POST /auth/login", h.Auth.Login)
	mux.HandleFunc("POST /auth/login/tfa", h.Auth.CompleteTFA)
	mux.HandleFunc("POST /auth/forgot-password", h.Auth.ForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", h.Auth.ResetPassword)
	mux.Handle("POST /auth/logout", auth.Require(http.HandlerFunc(h.Auth.Logout)))

	branches := func(action string, fn http.HandlerFunc) http.Handler {
		return auth.Require(middleware.RequirePermission(eval, action, "branches")(fn))
	}
	mux.Handle("GET /branches", branches("read", h.Branch.List))
	mux.Handle("GET /branches/{id}", branches("read", h.Branch.Get))
	mux.Handle("POST /branches", branches("create", h.Branch.Create))
	mux.Handle("PUT /branches/{id}", branches("update", h.Branch.Update))
	mux.Handle("DELETE /branches/{id}", branches("delete", h.Branch.Delete))

	mux.Handle("GET /audit-logs",
		auth.Require(middleware.RequirePermission(eval, "read", "audit_logs")(http.HandlerFunc(h.Audit.List))))

	var handler http.Handler = mux
	handler = middleware.CORS(corsOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	return handler
}

package handler

import (
	"context"
	"net/http"

	"rentcar-backoffice/internal/server/httpjson"
)

// Checker is a dependency that can report whether it is healthy.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// Handler reports service health from its registered dependency checks.
type Handler struct {
	checks map[string]Checker
}

func NewHandler(checks map[string]Checker) *Handler {
	return &Handler{checks: checks}
}

// Health handles GET /healthz. It returns 200 when every dependency check
// passes and 503 with per-check status otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, c := range h.checks {
		if err := c.HealthCheck(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}
	httpjson.Respond(w, status, map[string]any{
		"status": http.StatusText(status),
		"checks": results,
	})
}

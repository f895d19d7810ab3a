package middleware

import (
	"net/http"

	"rentcar-backoffice/internal/authz"
	"rentcar-backoffice/internal/server/httpjson"
)

// RequirePermission wraps next so it only runs when the caller's role is
// allowed to perform action on resource. It must run after Authenticator.
func RequirePermission(eval authz.Evaluator, action, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				httpjson.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			allowed, err := eval.Allow(r.Context(), id.Role, action, resource)
			if err != nil {
				httpjson.Error(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !allowed {
				httpjson.Error(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

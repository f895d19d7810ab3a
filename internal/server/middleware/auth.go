package middleware

import (
	"net/http"
	"strings"
	"time"

	ltrepo "rentcar-backoffice/internal/logintoken/repository"
	"rentcar-backoffice/internal/security"
	"rentcar-backoffice/internal/server/httpjson"
)

// Authenticator validates bearer tokens and checks that the token's session
// is still active server side, so a logged-out or revoked token is rejected
// even before its JWT expiry.
type Authenticator struct {
	provider *security.TokenProvider
	tokens   ltrepo.Repository
	nowF     func() time.Time
}

func NewAuthenticator(provider *security.TokenProvider, tokens ltrepo.Repository) *Authenticator {
	return &Authenticator{
		provider: provider,
		tokens:   tokens,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// Require wraps next so it only runs for requests carrying a valid, active
// session token. The identity is placed on the request context.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpjson.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := a.provider.Validate(raw)
		if err != nil {
			httpjson.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		active, err := a.tokens.GetActiveByJTI(r.Context(), id.JTI, a.nowF())
		if err != nil {
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		if active == nil {
			httpjson.Error(w, http.StatusUnauthorized, "session expired")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

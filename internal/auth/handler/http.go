package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"rentcar-backoffice/internal/auth/service"
	"rentcar-backoffice/internal/server/httpjson"
	"rentcar-backoffice/internal/server/middleware"
)

// Handler exposes the authentication endpoints.
type Handler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

func NewHandler(svc *service.AuthService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	TFARequired bool   `json:"tfaRequired,omitempty"`
	ConfirmCode string `json:"confirmCode,omitempty"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Identifier == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "identifier and password are required")
		return
	}
	out, err := h.svc.Login(r.Context(), req.Identifier, req.Password, middleware.ClientIP(r))
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	switch o := out.(type) {
	case service.Authenticated:
		httpjson.Respond(w, http.StatusOK, loginResponse{
			Token:     o.Token,
			ExpiresAt: o.ExpiresAt.Format(timeFormat),
		})
	case service.ChallengeIssued:
		httpjson.Respond(w, http.StatusOK, loginResponse{
			TFARequired: true,
			ConfirmCode: o.TFAConfirmCode,
		})
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

type tfaRequest struct {
	Identifier  string `json:"identifier"`
	Code        string `json:"code"`
	ConfirmCode string `json:"confirmCode"`
}

// CompleteTFA handles POST /auth/login/tfa.
func (h *Handler) CompleteTFA(w http.ResponseWriter, r *http.Request) {
	var req tfaRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	auth, err := h.svc.CompleteTFA(r.Context(), req.Identifier, req.Code, req.ConfirmCode, middleware.ClientIP(r))
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, loginResponse{
		Token:     auth.Token,
		ExpiresAt: auth.ExpiresAt.Format(timeFormat),
	})
}

type forgotPasswordRequest struct {
	Identifier string `json:"identifier"`
}

// ForgotPassword handles POST /auth/forgot-password. The response is the same
// whether or not the identifier matches an account.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Identifier, middleware.ClientIP(r)); err != nil {
		h.logger.Error("forgot password failed", "error", err)
	}
	httpjson.Respond(w, http.StatusAccepted, map[string]string{
		"message": "if the account exists, a reset code has been sent",
	})
}

type resetPasswordRequest struct {
	Identifier  string `json:"identifier"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword handles POST /auth/reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewPassword == "" {
		httpjson.Error(w, http.StatusBadRequest, "new password is required")
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Identifier, req.Code, req.NewPassword, middleware.ClientIP(r)); err != nil {
		h.writeAuthError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// Logout handles POST /auth/logout. Requires authentication.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if err := h.svc.Logout(r.Context(), id, middleware.ClientIP(r)); err != nil {
		h.logger.Error("logout failed", "user_id", id.UserID, "error", err)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "logged out"})
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

// writeAuthError maps service sentinels to responses. Unknown errors are
// logged and returned as an opaque 500.
func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpjson.Error(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrInvalidTFAChallenge):
		httpjson.Error(w, http.StatusUnauthorized, service.ErrInvalidTFAChallenge.Error())
	case errors.Is(err, service.ErrInvalidResetCode):
		httpjson.Error(w, http.StatusBadRequest, service.ErrInvalidResetCode.Error())
	default:
		h.logger.Error("auth request failed", "error", err)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

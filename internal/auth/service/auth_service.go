package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rentcar-backoffice/internal/audit"
	auditdomain "rentcar-backoffice/internal/audit/domain"
	ltdomain "rentcar-backoffice/internal/logintoken/domain"
	ltrepo "rentcar-backoffice/internal/logintoken/repository"
	"rentcar-backoffice/internal/mail"
	"rentcar-backoffice/internal/security"
	userdomain "rentcar-backoffice/internal/user/domain"
	userrepo "rentcar-backoffice/internal/user/repository"
)

// AuthService implements login, two-factor completion, password recovery and
// logout. Failure paths that depend on account state collapse into the
// sentinel errors in errors.go; the precise cause is recorded in the audit
// trail, never in the response.
type AuthService struct {
	users    userrepo.Repository
	tokens   ltrepo.Repository
	sender   mail.Sender
	hasher   *security.Hasher
	provider *security.TokenProvider
	audit    audit.Recorder
	logger   *slog.Logger

	tfaTTL   time.Duration
	resetTTL time.Duration
	nowF     func() time.Time
}

func NewAuthService(
	users userrepo.Repository,
	tokens ltrepo.Repository,
	sender mail.Sender,
	hasher *security.Hasher,
	provider *security.TokenProvider,
	auditor audit.Recorder,
	logger *slog.Logger,
	tfaTTL, resetTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		sender:   sender,
		hasher:   hasher,
		provider: provider,
		audit:    auditor,
		logger:   logger,
		tfaTTL:   tfaTTL,
		resetTTL: resetTTL,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies the identifier (username or email) and password. For
// accounts with two-factor enabled it issues a fresh challenge and returns
// ChallengeIssued; otherwise it returns Authenticated with a session token.
func (s *AuthService) Login(ctx context.Context, identifier, password, ip string) (LoginOutcome, error) {
	u, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if u == nil {
		s.audit.Record(ctx, "", auditdomain.ActionLoginFailed, "user/"+identifier, ip,
			map[string]string{"cause": "user_not_found"})
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		s.audit.Record(ctx, u.ID, auditdomain.ActionLoginFailed, "user/"+u.ID, ip,
			map[string]string{"cause": "user_inactive"})
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		s.audit.Record(ctx, u.ID, auditdomain.ActionLoginFailed, "user/"+u.ID, ip,
			map[string]string{"cause": "password_mismatch"})
		return nil, ErrInvalidCredentials
	}

	if u.TFAEnabled {
		return s.issueChallenge(ctx, u, ip)
	}

	token, expiresAt, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, u.ID, auditdomain.ActionLoginSucceeded, "user/"+u.ID, ip, nil)
	return Authenticated{Token: token, ExpiresAt: expiresAt}, nil
}

// CompleteTFA finishes a pending two-factor challenge. The caller supplies
// the code that was mailed to the user together with the confirmation code
// returned by Login. Every mismatch maps to ErrInvalidTFAChallenge.
func (s *AuthService) CompleteTFA(ctx context.Context, identifier, code, confirmCode, ip string) (Authenticated, error) {
	u, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return Authenticated{}, fmt.Errorf("look up user: %w", err)
	}
	if u == nil {
		s.audit.Record(ctx, "", auditdomain.ActionTFAFailed, "user/"+identifier, ip,
			map[string]string{"cause": "user_not_found"})
		return Authenticated{}, ErrInvalidTFAChallenge
	}
	c := u.TFAChallenge
	now := s.nowF()
	switch {
	case c == nil:
		s.audit.Record(ctx, u.ID, auditdomain.ActionTFAFailed, "user/"+u.ID, ip,
			map[string]string{"cause": "no_pending_challenge"})
		return Authenticated{}, ErrInvalidTFAChallenge
	case c.IsCompleted:
		s.audit.Record(ctx, u.ID, auditdomain.ActionTFAFailed, "user/"+u.ID, ip,
			map[string]string{"cause": "challenge_already_completed"})
		return Authenticated{}, ErrInvalidTFAChallenge
	case now.After(c.ExpiresAt):
		s.audit.Record(ctx, u.ID, auditdomain.ActionTFAFailed, "user/"+u.ID, ip,
			map[string]string{"cause": "challenge_expired"})
		return Authenticated{}, ErrInvalidTFAChallenge
	case !security.SecretEqual(code, c.CodeHash) || !security.SecretEqual(confirmCode, c.ConfirmCodeHash):
		s.audit.Record(ctx, u.ID, auditdomain.ActionTFAFailed, "user/"+u.ID, ip,
			map[string]string{"cause": "code_mismatch"})
		return Authenticated{}, ErrInvalidTFAChallenge
	}

	c.IsCompleted = true
	u.Stamp(u.ID, now)
	if err := s.users.Update(ctx, u); err != nil {
		return Authenticated{}, fmt.Errorf("complete challenge: %w", err)
	}

	token, expiresAt, err := s.issueSession(ctx, u)
	if err != nil {
		return Authenticated{}, err
	}
	s.audit.Record(ctx, u.ID, auditdomain.ActionTFACompleted, "user/"+u.ID, ip, nil)
	return Authenticated{Token: token, ExpiresAt: expiresAt}, nil
}

// ForgotPassword starts password recovery. The response is identical whether
// or not the identifier matches an account, so it cannot be used to probe for
// registered usernames or emails.
func (s *AuthService) ForgotPassword(ctx context.Context, identifier, ip string) error {
	u, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		s.logger.Error("forgot password lookup failed", "error", err)
		return nil
	}
	if u == nil || !u.IsActive {
		return nil
	}
	code, err := generateLoginCode()
	if err != nil {
		s.logger.Error("forgot password code generation failed", "error", err)
		return nil
	}
	now := s.nowF()
	u.PasswordReset = &userdomain.PasswordReset{
		CodeHash:    security.HashSecret(code),
		ExpiresAt:   now.Add(s.resetTTL),
		IsCompleted: false,
	}
	u.Stamp(u.ID, now)
	if err := s.users.Update(ctx, u); err != nil {
		s.logger.Error("forgot password update failed", "user_id", u.ID, "error", err)
		return nil
	}
	if err := s.sender.Send(ctx, u.Email, "Password reset code",
		fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, int(s.resetTTL.Minutes()))); err != nil {
		s.logger.Error("forgot password mail failed", "user_id", u.ID, "error", err)
		return nil
	}
	s.audit.Record(ctx, u.ID, auditdomain.ActionPasswordForgot, "user/"+u.ID, ip, nil)
	return nil
}

// ResetPassword sets a new password for the account if the reset code is
// valid, then revokes every active session of the user.
func (s *AuthService) ResetPassword(ctx context.Context, identifier, code, newPassword, ip string) error {
	u, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if u == nil {
		return ErrInvalidResetCode
	}
	p := u.PasswordReset
	now := s.nowF()
	if p == nil || p.IsCompleted || now.After(p.ExpiresAt) || !security.SecretEqual(code, p.CodeHash) {
		s.audit.Record(ctx, u.ID, auditdomain.ActionPasswordReset, "user/"+u.ID, ip,
			map[string]string{"cause": "invalid_reset_code", "outcome": "rejected"})
		return ErrInvalidResetCode
	}

	hash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}
	u.PasswordHash = hash
	p.IsCompleted = true
	u.Stamp(u.ID, now)
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if err := s.tokens.DeactivateAllByUser(ctx, u.ID); err != nil {
		s.logger.Error("revoke sessions after password reset failed", "user_id", u.ID, "error", err)
	}
	s.audit.Record(ctx, u.ID, auditdomain.ActionPasswordReset, "user/"+u.ID, ip, nil)
	return nil
}

// Logout deactivates the session identified by the token's jti.
func (s *AuthService) Logout(ctx context.Context, id *security.Identity, ip string) error {
	if err := s.tokens.DeactivateByJTI(ctx, id.JTI); err != nil {
		return fmt.Errorf("deactivate token: %w", err)
	}
	s.audit.Record(ctx, id.UserID, auditdomain.ActionLogout, "user/"+id.UserID, ip, nil)
	return nil
}

// issueChallenge replaces any pending challenge on the account. A concurrent
// login for the same user wins by writing last; the earlier challenge's codes
// simply stop matching.
func (s *AuthService) issueChallenge(ctx context.Context, u *userdomain.User, ip string) (LoginOutcome, error) {
	code, err := generateLoginCode()
	if err != nil {
		return nil, err
	}
	confirm, err := generateConfirmCode()
	if err != nil {
		return nil, err
	}
	now := s.nowF()
	u.TFAChallenge = &userdomain.TFAChallenge{
		CodeHash:        security.HashSecret(code),
		ConfirmCodeHash: security.HashSecret(confirm),
		ExpiresAt:       now.Add(s.tfaTTL),
		IsCompleted:     false,
	}
	u.Stamp(u.ID, now)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}
	if err := s.sender.Send(ctx, u.Email, "Your sign-in code",
		fmt.Sprintf("Your sign-in code is %s. It expires in %d minutes.", code, int(s.tfaTTL.Minutes()))); err != nil {
		return nil, fmt.Errorf("deliver challenge code: %w", err)
	}
	s.audit.Record(ctx, u.ID, auditdomain.ActionTFAIssued, "user/"+u.ID, ip, nil)
	return ChallengeIssued{TFAConfirmCode: confirm}, nil
}

// issueSession deactivates the user's previous tokens, signs a new session
// token and persists its record.
func (s *AuthService) issueSession(ctx context.Context, u *userdomain.User) (string, time.Time, error) {
	if err := s.tokens.DeactivateAllByUser(ctx, u.ID); err != nil {
		return "", time.Time{}, fmt.Errorf("deactivate previous tokens: %w", err)
	}
	token, jti, expiresAt, err := s.provider.Issue(security.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName(),
		Role:     string(u.Role),
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	if err := s.tokens.Create(ctx, &ltdomain.LoginToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		JTI:       jti,
		IsActive:  true,
		ExpiresAt: expiresAt,
		CreatedAt: s.nowF(),
	}); err != nil {
		return "", time.Time{}, fmt.Errorf("store login token: %w", err)
	}
	return token, expiresAt, nil
}

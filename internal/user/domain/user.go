package domain

import (
	"errors"
	"strings"
	"time"
)

// User is the back-office user aggregate.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	TFAEnabled   bool
	// TFAChallenge is the outstanding two-factor challenge; nil when none.
	// The four challenge fields live and die together: a partially populated
	// row is treated as no usable challenge.
	TFAChallenge *TFAChallenge
	// PasswordReset is the outstanding forgot-password state; nil when none.
	PasswordReset *PasswordReset
	IsActive      bool
	IsDeleted     bool
	CreatedAt     time.Time
	CreatedBy     string
	UpdatedAt     *time.Time
	UpdatedBy     *string
	DeletedAt     *time.Time
	DeletedBy     *string
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// TFAChallenge is one outstanding two-factor attempt. Code and confirm code
// are stored hashed; the plaintext exists only in the mail body and the login
// response, respectively.
type TFAChallenge struct {
	CodeHash        string
	ConfirmCodeHash string
	ExpiresAt       time.Time
	IsCompleted     bool
}

// PasswordReset is one outstanding forgot-password attempt.
type PasswordReset struct {
	CodeHash    string
	ExpiresAt   time.Time
	IsCompleted bool
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.Role == "" {
		u.Role = RoleStaff
	}
	return nil
}

// Stamp records an update by the given actor at the given time.
func (u *User) Stamp(actorID string, at time.Time) {
	u.UpdatedAt = &at
	u.UpdatedBy = &actorID
}

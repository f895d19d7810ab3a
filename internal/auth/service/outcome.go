package service

import "time"

// LoginOutcome is the result of a successful Login call. It is either an
// Authenticated outcome carrying a session token, or a ChallengeIssued
// outcome carrying the confirmation code for a pending two-factor challenge.
type LoginOutcome interface {
	loginOutcome()
}

// Authenticated means credentials were valid and two-factor auth is not
// enabled for the account; the session token is ready to use.
type Authenticated struct {
	Token     string
	ExpiresAt time.Time
}

// ChallengeIssued means credentials were valid but the account requires
// two-factor completion. The verification code was delivered out of band;
// TFAConfirmCode is handed back to the caller and must accompany the code
// when completing the challenge.
type ChallengeIssued struct {
	TFAConfirmCode string
}

func (Authenticated) loginOutcome()   {}
func (ChallengeIssued) loginOutcome() {}

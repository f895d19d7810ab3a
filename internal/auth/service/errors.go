package service

import "errors"

// Sentinel errors returned by AuthService. The transport layer maps each of
// these to a deliberately generic message so callers cannot distinguish a
// missing account from a wrong password or a stale challenge.
var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidTFAChallenge = errors.New("two-factor verification failed")
	ErrInvalidResetCode    = errors.New("password reset failed")
)

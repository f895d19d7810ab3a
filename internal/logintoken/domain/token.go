package domain

import "time"

// LoginToken is the persisted record of one issued session token, keyed by
// the token's jti. A bearer token is honored only while its row is active and
// unexpired, which gives logout and administrative revocation a server-side
// kill switch.
type LoginToken struct {
	ID        string
	UserID    string
	JTI       string
	IsActive  bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

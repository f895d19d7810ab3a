package mail

import "context"

// Sender delivers a message to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

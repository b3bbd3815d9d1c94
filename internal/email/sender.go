// Package email provides outbound email delivery behind a small Sender
// interface so services never depend on a concrete transport.
package email

import "context"

// Sender delivers a single plain-text email.
type Sender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

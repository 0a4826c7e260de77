// Package checkout wraps the external payment provider's checkout-session
// API behind a small client interface so cores and tests can swap providers.
package checkout

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// SessionStatus is the provider-side lifecycle state of a checkout session.
type SessionStatus string

const (
	SessionOpen      SessionStatus = "open"
	SessionCompleted SessionStatus = "completed"
	SessionExpired   SessionStatus = "expired"
)

// PaymentStatus is the provider-side payment state of a checkout session.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)

// CreatedSession is the result of opening a new checkout session.
type CreatedSession struct {
	SessionID   string
	RedirectURL string
}

// Outcome is the normalized read of an existing checkout session.
type Outcome struct {
	Identity      string
	Status        SessionStatus
	PaymentStatus PaymentStatus
}

// Paid reports whether the session's payment has settled.
func (o Outcome) Paid() bool { return o.PaymentStatus == PaymentPaid }

var (
	// ErrInvalidIdentity indicates the identity failed syntactic validation.
	ErrInvalidIdentity = errors.New("invalid_identity")
	// ErrSessionNotFound indicates the provider has no session for the token.
	ErrSessionNotFound = errors.New("session_not_found")
	// ErrProviderUnavailable indicates a transport failure or timeout talking
	// to the provider. Retryable; never to be read as "unpaid".
	ErrProviderUnavailable = errors.New("provider_unavailable")
)

// Client creates and retrieves provider checkout sessions.
// RetrieveSession must be a pure read on the provider side.
type Client interface {
	CreateSession(ctx context.Context, identity string) (CreatedSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (Outcome, error)
}

var identityRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateIdentity checks the syntactic shape of an identity (an email).
func ValidateIdentity(identity string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" || len(identity) > 254 || !identityRe.MatchString(identity) {
		return ErrInvalidIdentity
	}
	return nil
}

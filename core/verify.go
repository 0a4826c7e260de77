package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/open-rails/transcribekit/checkout"
	"github.com/open-rails/transcribekit/entitlement"
)

// Verification is the resolved outcome of a checkout session.
type Verification struct {
	Identity string `json:"identity"`
	Active   bool   `json:"active"`
}

// Verify resolves a checkout session token into a stored entitlement.
//
// The stored decision is active iff the provider reports the session as paid.
// Idempotent for an unchanged provider-side session; on any adapter failure
// the store is left untouched, so absence of an answer is never conflated
// with "not entitled".
func (s *Service) Verify(ctx context.Context, sessionID string) (Verification, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Verification{}, checkout.ErrSessionNotFound
	}

	outcome, err := s.checkout.RetrieveSession(ctx, sessionID)
	if err != nil {
		s.log.WithError(err).WithField("session", sessionID).Warn("session retrieval failed")
		return Verification{}, err
	}

	identity := entitlement.NormalizeIdentity(outcome.Identity)
	if identity == "" {
		// A session without an identity can never become a usable
		// entitlement; storing it would create a record under the empty key.
		s.log.WithField("session", sessionID).Warn("session carries no identity")
		return Verification{}, fmt.Errorf("%w: session has no identity", checkout.ErrSessionNotFound)
	}
	active := outcome.Paid()
	if err := s.store.Upsert(ctx, identity, active, s.now()); err != nil {
		return Verification{}, err
	}
	_ = s.events.LogVerification(ctx, identity, sessionID, active)

	return Verification{Identity: identity, Active: active}, nil
}

// Package entitlement defines the stored access decision per identity and
// the Store contract every backend implements.
package entitlement

import (
	"context"
	"strings"
	"time"
)

// Record is the durable decision for one identity. At most one record exists
// per identity; verification overwrites, never appends.
type Record struct {
	Identity       string    `json:"identity"`
	Active         bool      `json:"active"`
	LastVerifiedAt time.Time `json:"last_verified_at"`
}

// Store maps an identity to its entitlement record.
//
// Get returns ok=false when no verification has ever succeeded for the
// identity; callers must treat that as not entitled, distinct from an
// explicit Active=false record.
//
// Upsert is atomic per key and last-write-wins on verifiedAt: an upsert
// carrying an older timestamp than the stored record is a no-op, so
// concurrent verifications cannot regress the record.
type Store interface {
	Get(ctx context.Context, identity string) (Record, bool, error)
	Upsert(ctx context.Context, identity string, active bool, verifiedAt time.Time) error
	Close() error
}

// NormalizeIdentity maps an identity to its canonical key form. Both the
// verifier and the gate go through this, keeping case handling consistent.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

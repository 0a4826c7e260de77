package pgstore

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-rails/transcribekit/entitlement"
)

// Store is a Postgres-backed implementation of entitlement.Store against the
// entitlements table (see migrations/postgres).
type Store struct {
	pg     *pgxpool.Pool
	schema string
}

// New creates a Postgres entitlement store. schema defaults to "transcribe".
func New(pg *pgxpool.Pool, schema string) *Store {
	s := strings.TrimSpace(schema)
	if s == "" {
		s = "transcribe"
	}
	return &Store{pg: pg, schema: s}
}

func (s *Store) table() string { return s.schema + ".entitlements" }

func (s *Store) Get(ctx context.Context, identity string) (entitlement.Record, bool, error) {
	if s.pg == nil {
		return entitlement.Record{}, false, nil
	}
	var rec entitlement.Record
	err := s.pg.QueryRow(ctx,
		`SELECT identity, active, last_verified_at FROM `+s.table()+` WHERE identity=$1 LIMIT 1`,
		entitlement.NormalizeIdentity(identity),
	).Scan(&rec.Identity, &rec.Active, &rec.LastVerifiedAt)
	if err == pgx.ErrNoRows {
		return entitlement.Record{}, false, nil
	}
	if err != nil {
		return entitlement.Record{}, false, err
	}
	return rec, true, nil
}

func (s *Store) Upsert(ctx context.Context, identity string, active bool, verifiedAt time.Time) error {
	if s.pg == nil {
		return nil
	}
	// The WHERE clause makes a stale upsert a no-op (last-write-wins).
	_, err := s.pg.Exec(ctx,
		`INSERT INTO `+s.table()+` (identity, active, last_verified_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (identity) DO UPDATE
		 SET active = EXCLUDED.active, last_verified_at = EXCLUDED.last_verified_at
		 WHERE `+s.table()+`.last_verified_at <= EXCLUDED.last_verified_at`,
		entitlement.NormalizeIdentity(identity), active, verifiedAt,
	)
	return err
}

// Close releases the pool.
func (s *Store) Close() error {
	if s.pg != nil {
		s.pg.Close()
	}
	return nil
}

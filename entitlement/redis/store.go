package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/open-rails/transcribekit/entitlement"
)

// Store is a Redis-backed implementation of entitlement.Store.
// Records are hashes keyed by identity under a configurable prefix.
type Store struct {
	rdb   *redis.Client
	keyNS string
}

// upsertScript applies last-write-wins on verified_at atomically so a stale
// verification can never overwrite a newer one.
var upsertScript = redis.NewScript(`
local ts = redis.call('HGET', KEYS[1], 'verified_at')
if ts and tonumber(ts) > tonumber(ARGV[2]) then
  return 0
end
redis.call('HSET', KEYS[1], 'active', ARGV[1], 'verified_at', ARGV[2])
return 1
`)

// New creates a Redis entitlement store. keyPrefix defaults to
// "transcribe:entitlement:".
func New(rdb *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = "transcribe:entitlement:"
	}
	return &Store{rdb: rdb, keyNS: keyPrefix}
}

func (s *Store) key(identity string) string {
	return s.keyNS + entitlement.NormalizeIdentity(identity)
}

func (s *Store) Get(ctx context.Context, identity string) (entitlement.Record, bool, error) {
	vals, err := s.rdb.HGetAll(ctx, s.key(identity)).Result()
	if err != nil {
		return entitlement.Record{}, false, err
	}
	if len(vals) == 0 {
		return entitlement.Record{}, false, nil
	}
	nanos, err := strconv.ParseInt(vals["verified_at"], 10, 64)
	if err != nil {
		return entitlement.Record{}, false, err
	}
	return entitlement.Record{
		Identity:       entitlement.NormalizeIdentity(identity),
		Active:         vals["active"] == "1",
		LastVerifiedAt: time.Unix(0, nanos),
	}, true, nil
}

func (s *Store) Upsert(ctx context.Context, identity string, active bool, verifiedAt time.Time) error {
	activeArg := "0"
	if active {
		activeArg = "1"
	}
	return upsertScript.Run(ctx, s.rdb,
		[]string{s.key(identity)},
		activeArg, strconv.FormatInt(verifiedAt.UnixNano(), 10),
	).Err()
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

package memorystore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAbsentBeforeAnyUpsert(t *testing.T) {
	s := New()
	defer s.Close()

	_, ok, err := s.Get(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected absent record before any upsert")
	}
}

func TestUpsertThenGet(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()
	now := time.Now()

	if err := s.Upsert(ctx, "A@X.com", true, now); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Lookup is case-insensitive via normalization.
	rec, ok, err := s.Get(ctx, "a@x.com")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !rec.Active {
		t.Error("expected active record")
	}
	if rec.Identity != "a@x.com" {
		t.Errorf("identity not normalized: %q", rec.Identity)
	}
	if !rec.LastVerifiedAt.Equal(now) {
		t.Errorf("timestamp mismatch: %v", rec.LastVerifiedAt)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		if err := s.Upsert(ctx, "a@x.com", true, now); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	rec, ok, _ := s.Get(ctx, "a@x.com")
	if !ok || !rec.Active || !rec.LastVerifiedAt.Equal(now) {
		t.Errorf("unexpected record after repeated upserts: %+v ok=%v", rec, ok)
	}
}

func TestLastWriteWinsOnTimestamp(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()
	t1 := time.Now()
	t2 := t1.Add(time.Second)

	// Arrival order does not matter; the newer timestamp wins.
	if err := s.Upsert(ctx, "a@x.com", false, t2); err != nil {
		t.Fatalf("upsert t2: %v", err)
	}
	if err := s.Upsert(ctx, "a@x.com", true, t1); err != nil {
		t.Fatalf("upsert t1: %v", err)
	}

	rec, ok, _ := s.Get(ctx, "a@x.com")
	if !ok {
		t.Fatal("record missing")
	}
	if rec.Active {
		t.Error("stale upsert overwrote newer record")
	}
	if !rec.LastVerifiedAt.Equal(t2) {
		t.Errorf("expected t2 to win, got %v", rec.LastVerifiedAt)
	}
}

func TestConcurrentUpsertsNoTornState(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()
	base := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Even offsets write inactive, odd write active; highest offset
			// is 63 (active=true), so true must win.
			_ = s.Upsert(ctx, "a@x.com", i%2 == 1, base.Add(time.Duration(i)*time.Millisecond))
		}(i)
	}
	wg.Wait()

	rec, ok, _ := s.Get(ctx, "a@x.com")
	if !ok {
		t.Fatal("record missing")
	}
	if !rec.Active {
		t.Error("expected the newest write (active) to win")
	}
	if !rec.LastVerifiedAt.Equal(base.Add(63 * time.Millisecond)) {
		t.Errorf("expected newest timestamp, got %v", rec.LastVerifiedAt)
	}
}

func TestDistinctIdentitiesIndependent(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()
	now := time.Now()

	_ = s.Upsert(ctx, "a@x.com", true, now)
	_ = s.Upsert(ctx, "b@x.com", false, now)

	a, _, _ := s.Get(ctx, "a@x.com")
	b, _, _ := s.Get(ctx, "b@x.com")
	if !a.Active || b.Active {
		t.Errorf("cross-identity interference: a=%+v b=%+v", a, b)
	}
}

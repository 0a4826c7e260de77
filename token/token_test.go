package token

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	signer, err := NewRSASigner(2048, "key-1")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	v, err := NewVerifier(signer.PublicKey(), signer.KID(), time.Minute)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}

	raw, err := signer.Sign(context.Background(), AccessClaims("a@x.com", time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	id, err := v.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Subject != "a@x.com" {
		t.Errorf("subject: %q", id.Subject)
	}
	if !id.Entitled {
		t.Error("expected entitled token")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	signer, _ := NewRSASigner(2048, "key-1")
	v, _ := NewVerifier(signer.PublicKey(), signer.KID(), 0)

	claims := jwt.MapClaims{
		"sub": "a@x.com",
		"ent": []string{"transcribe"},
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	raw, err := signer.Sign(context.Background(), claims)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(raw); err != ErrInvalidToken {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	signer, _ := NewRSASigner(2048, "key-1")
	other, _ := NewRSASigner(2048, "key-2")
	v, _ := NewVerifier(other.PublicKey(), other.KID(), 0)

	raw, err := signer.Sign(context.Background(), AccessClaims("a@x.com", time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(raw); err != ErrInvalidToken {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	signer, _ := NewRSASigner(2048, "key-1")
	v, _ := NewVerifier(signer.PublicKey(), signer.KID(), 0)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := v.Verify(raw); err != ErrInvalidToken {
			t.Errorf("Verify(%q) = %v, want ErrInvalidToken", raw, err)
		}
	}
}

package transhttp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	transhttp "github.com/open-rails/transcribekit/adapters/http"
	"github.com/open-rails/transcribekit/token"
)

func TestJWKSHandlerPublishesSigningKey(t *testing.T) {
	signer, err := token.NewRSASigner(2048, "key-1")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	h, err := transhttp.JWKSHandler(signer)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: %q", ct)
	}

	set, err := jwk.Parse(w.Body.Bytes())
	if err != nil {
		t.Fatalf("parse published set: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("published %d keys, want 1", set.Len())
	}
	key, _ := set.Key(0)
	if key.KeyID() != "key-1" {
		t.Errorf("kid: %q", key.KeyID())
	}
	if key.KeyType() != jwa.RSA {
		t.Errorf("kty: %v", key.KeyType())
	}
	if alg := key.Algorithm(); alg.String() != "RS256" {
		t.Errorf("alg: %v", alg)
	}

	// The published set must validate a token the signer just minted.
	raw, err := signer.Sign(context.Background(), token.AccessClaims("a@x.com", time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	tok, err := jwt.Parse([]byte(raw), jwt.WithKeySet(set), jwt.WithValidate(true))
	if err != nil {
		t.Fatalf("token did not validate against published set: %v", err)
	}
	if tok.Subject() != "a@x.com" {
		t.Errorf("subject: %q", tok.Subject())
	}
}

func TestJWKSHandlerConditionalGet(t *testing.T) {
	signer, err := token.NewRSASigner(2048, "key-1")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	h, err := transhttp.JWKSHandler(signer)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil)
	req.Header.Set("If-None-Match", etag)
	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	if second.Code != http.StatusNotModified {
		t.Fatalf("conditional status = %d, want 304", second.Code)
	}
	if second.Body.Len() != 0 {
		t.Errorf("304 response carried a body of %d bytes", second.Body.Len())
	}
}

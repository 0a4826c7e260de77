package token

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrInvalidToken covers expiry, bad signatures, and malformed tokens.
var ErrInvalidToken = errors.New("invalid_token")

// Verifier validates access tokens against the signer's public key.
type Verifier struct {
	key  jwk.Key
	skew time.Duration
}

// NewVerifier builds a verifier for the given RSA public key.
func NewVerifier(pub *rsa.PublicKey, kid string, skew time.Duration) (*Verifier, error) {
	key, err := jwk.FromRaw(pub)
	if err != nil {
		return nil, err
	}
	if kid != "" {
		if err := key.Set(jwk.KeyIDKey, kid); err != nil {
			return nil, err
		}
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256); err != nil {
		return nil, err
	}
	return &Verifier{key: key, skew: skew}, nil
}

// Identity holds the validated claims of one token.
type Identity struct {
	Subject  string
	Entitled bool
}

// Verify parses and validates raw and extracts the identity claims.
func (v *Verifier) Verify(raw string) (Identity, error) {
	if v == nil || raw == "" {
		return Identity{}, ErrInvalidToken
	}
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.RS256, v.key),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(v.skew),
	)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{Subject: tok.Subject()}
	if ent, ok := tok.Get("ent"); ok {
		if vals, ok := ent.([]any); ok {
			for _, e := range vals {
				if s, ok := e.(string); ok && s == "transcribe" {
					id.Entitled = true
				}
			}
		}
	}
	if id.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

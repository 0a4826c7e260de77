package transhttp

import (
	"net/http"

	"github.com/open-rails/transcribekit/token"
)

// JWKSHandler serves the access-token verification key as a JWKS document.
// The set is built once; the signer's key does not rotate at runtime.
func JWKSHandler(signer *token.RSASigner) (http.Handler, error) {
	set, err := token.PublicJWKS(signer)
	if err != nil {
		return nil, err
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token.ServeJWKS(w, r, set)
	}), nil
}

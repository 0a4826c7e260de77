// Package transgin adapts the core service onto gin routes.
package transgin

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/transcribekit/token"
)

const (
	ctxIdentityKey = "auth.identity"
	ctxEntitledKey = "auth.entitled"
)

// TokenOptional validates a bearer token when present and stashes the
// identity on the context. Requests without a token pass through; the
// handlers fall back to the declared identity field, and the entitlement
// gate still runs either way.
func TokenOptional(v *token.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.Next()
			return
		}
		id, err := v.Verify(strings.TrimPrefix(auth, "Bearer "))
		if err == nil {
			c.Set(ctxIdentityKey, id.Subject)
			c.Set(ctxEntitledKey, id.Entitled)
		}
		c.Next()
	}
}

// CallerIdentity resolves the request's identity: a validated token subject
// wins over the client-declared field, so a token holder cannot be
// impersonated by form data.
func CallerIdentity(c *gin.Context, declared string) string {
	if v, ok := c.Get(ctxIdentityKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return strings.TrimSpace(declared)
}

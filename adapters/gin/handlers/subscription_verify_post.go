package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/transcribekit/adapters/ginutil"
	"github.com/open-rails/transcribekit/checkout"
	core "github.com/open-rails/transcribekit/core"
	"github.com/open-rails/transcribekit/token"
)

// HandleSubscriptionVerifyPOST confirms a subscription: resolves the session
// token the provider redirected back with into a stored entitlement. When a
// signer is configured and the entitlement is active, the response carries a
// short-lived access token.
//
// A provider outage maps to 503, never to an authorization failure: the
// client may retry confirmation, whereas a 404 session is gone for good.
func HandleSubscriptionVerifyPOST(svc *core.Service, signer token.Signer, tokenTTL time.Duration, rl ginutil.RateLimiter) gin.HandlerFunc {
	type verifyReq struct {
		SessionID string `json:"session_id"`
	}
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLSubscriptionVerify) {
			ginutil.TooMany(c)
			return
		}
		var req verifyReq
		if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
			ginutil.BadRequest(c, "missing_session_id")
			return
		}

		v, err := svc.Verify(c.Request.Context(), req.SessionID)
		switch {
		case errors.Is(err, checkout.ErrSessionNotFound):
			ginutil.NotFound(c, "session_not_found")
			return
		case errors.Is(err, checkout.ErrProviderUnavailable):
			ginutil.Unavailable(c, "provider_unavailable")
			return
		case err != nil:
			ginutil.ServerErr(c, "verification_failed")
			return
		}

		resp := gin.H{"active": v.Active}
		if signer != nil && v.Active {
			if raw, err := signer.Sign(c.Request.Context(), token.AccessClaims(v.Identity, tokenTTL)); err == nil {
				resp["access_token"] = raw
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

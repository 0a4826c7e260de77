package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/transcribekit/adapters/ginutil"
	"github.com/open-rails/transcribekit/checkout"
	core "github.com/open-rails/transcribekit/core"
)

// HandleCheckoutSessionPOST begins a subscription: opens a provider checkout
// session and returns the redirect URL.
func HandleCheckoutSessionPOST(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	type checkoutReq struct {
		Email string `json:"email"`
	}
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLCheckoutCreate) {
			ginutil.TooMany(c)
			return
		}
		var req checkoutReq
		if err := c.ShouldBindJSON(&req); err != nil {
			ginutil.BadRequest(c, "invalid_request")
			return
		}

		cs, err := svc.BeginCheckout(c.Request.Context(), req.Email)
		switch {
		case errors.Is(err, checkout.ErrInvalidIdentity):
			ginutil.BadRequest(c, "invalid_identity")
			return
		case errors.Is(err, checkout.ErrProviderUnavailable):
			ginutil.Unavailable(c, "provider_unavailable")
			return
		case err != nil:
			ginutil.ServerErr(c, "checkout_failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{"url": cs.RedirectURL, "session_id": cs.SessionID})
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	transgin "github.com/open-rails/transcribekit/adapters/gin"
	"github.com/open-rails/transcribekit/adapters/ginutil"
	core "github.com/open-rails/transcribekit/core"
	"github.com/open-rails/transcribekit/engine"
	"github.com/open-rails/transcribekit/upload"
)

// HandleTranscribePOST is the gated boundary operation: multipart upload in,
// transcript out. The entitlement check happens inside the core service
// before any staging work.
func HandleTranscribePOST(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLTranscribe) {
			ginutil.TooMany(c)
			return
		}

		identity := transgin.CallerIdentity(c, c.PostForm("email"))
		if identity == "" {
			ginutil.BadRequest(c, "missing_identity")
			return
		}

		fh, err := c.FormFile("audio")
		if err != nil {
			ginutil.BadRequest(c, "empty_payload")
			return
		}
		f, err := fh.Open()
		if err != nil {
			ginutil.BadRequest(c, "empty_payload")
			return
		}
		defer f.Close()

		res, err := svc.Transcribe(c.Request.Context(), identity, f, fh.Filename)
		switch {
		case errors.Is(err, core.ErrSubscriptionRequired):
			ginutil.Forbidden(c, "subscription_required")
			return
		case errors.Is(err, upload.ErrEmptyPayload):
			ginutil.BadRequest(c, "empty_payload")
			return
		case errors.Is(err, upload.ErrUnsafeFileName):
			ginutil.BadRequest(c, "unsafe_file_name")
			return
		case errors.Is(err, upload.ErrPayloadTooLarge):
			ginutil.BadRequest(c, "payload_too_large")
			return
		case errors.Is(err, upload.ErrUnsupportedMedia):
			ginutil.BadRequest(c, "unsupported_media")
			return
		case errors.Is(err, engine.ErrUnavailable):
			ginutil.BadGateway(c, "engine_unavailable")
			return
		case err != nil:
			ginutil.ServerErr(c, "transcription_failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{"transcript": res.Text})
	}
}

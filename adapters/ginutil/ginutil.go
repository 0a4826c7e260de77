// Package ginutil holds shared response helpers and the rate-limit hook for
// the gin handlers.
package ginutil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Rate-limit bucket names, one per boundary operation.
const (
	RLCheckoutCreate     = "checkout.create"
	RLSubscriptionVerify = "subscription.verify"
	RLTranscribe         = "transcribe"
)

// RateLimiter is what the handlers need from a limiter implementation.
type RateLimiter interface {
	AllowNamed(bucket, key string) (bool, error)
}

// AllowNamed applies the limiter keyed by client IP. A nil limiter allows
// everything; a limiter error fails open (the gate, not the limiter, is the
// authorization boundary).
func AllowNamed(c *gin.Context, rl RateLimiter, bucket string) bool {
	if rl == nil {
		return true
	}
	ok, err := rl.AllowNamed(bucket, c.ClientIP())
	if err != nil {
		return true
	}
	return ok
}

func BadRequest(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": code})
}

func Forbidden(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": code})
}

func NotFound(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": code})
}

func TooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
}

func Unavailable(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": code})
}

func BadGateway(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": code})
}

func ServerErr(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": code})
}

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
)

// RateLimit throttles requests per client IP and reports the window in X-RateLimit-* headers.
// A store failure fails the request rather than letting it through unmetered.
func RateLimit(lim *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		logger := GetLoggerFromCtx(c.Request.Context())

		window, err := lim.Get(c.Request.Context(), ip)
		if err != nil {
			logger.Error("Rate limit store unavailable", slog.String("ip", ip), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error during rate limit check"})
			return
		}

		c.Header(headerRateLimitLimit, strconv.FormatInt(window.Limit, 10))
		c.Header(headerRateLimitRemaining, strconv.FormatInt(window.Remaining, 10))
		c.Header(headerRateLimitReset, strconv.FormatInt(window.Reset, 10))

		if window.Reached {
			retryAfter := max(window.Reset-time.Now().Unix(), 1)
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			logger.Warn("Rate limit exceeded", slog.String("ip", ip), slog.Int64("limit", window.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}

		c.Next()
	}
}

package ratelimit

import (
	"context"
	"fmt"
	"net"
	"strings"

	"tally/internal/shared/utils/response"
	"tally/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Limiter is the budget check the middleware runs per request.
type Limiter interface {
	IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error)
}

// rate limiting middleware
func Middleware(rateLimiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get client IP
		clientIP := getClientIP(c)

		// Determine rate limit type from route
		limitType := getRateLimitType(c.Request.URL.Path)

		// Check rate limit
		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// The limiter itself failing is not the caller's fault; let the
			// request through rather than answer 500 from a Redis hiccup.
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		// Check if rate limited
		if !result.Allowed {
			logger.GetDefault().LogRateLimitExceeded(c.Request.Context(), clientIP, c.Request.URL.Path)
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

// getRateLimitType buckets a request path into a limiter budget. The
// verification-code check runs first because those routes sit under the
// login/register prefixes.
func getRateLimitType(path string) RateLimitType {
	switch {
	// Verification code sends are the most abusable surface
	case strings.Contains(path, "/verify_code"):
		return RateLimitTypeVerifyCode

	// Credential endpoints
	case strings.HasPrefix(path, "/api/account/user/login"),
		strings.HasPrefix(path, "/api/account/user/register"),
		strings.HasPrefix(path, "/api/account/user/refresh"):
		return RateLimitTypeAuth

	default:
		return RateLimitTypeDefault
	}
}

// extracts real client IP
func getClientIP(c *gin.Context) string {
	// Check X-Forwarded-For header
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	// Check X-Real-IP header
	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}

package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/intent-app/auth-service/core"
	"github.com/intent-app/auth-service/ports"
	"github.com/intent-app/auth-service/service"
)

// RateLimit bounds request volume per source. The limiter fails open: a
// broken limiter must not take authentication down with it.
func RateLimit(limiter ports.RateLimitStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		source := clientSource(c)
		decision, err := limiter.Hit(c.Request.Context(), source)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			log.Warn().Str("source", source).Msg("rate limit exceeded")
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}

// clientSource is a best-effort request source identifier: the first
// forwarded address when behind a proxy, otherwise the peer address.
func clientSource(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// AuthMiddleware creates middleware that validates access tokens.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		grant, err := authService.ValidateAccess(c.Request.Context(), strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set("identityID", grant.IdentityID)
		c.Set("walletAddress", grant.Address)

		c.Next()
	}
}

package middleware

import (
	"fmt"
	"net/http"

	"youdl/internal/model"
	"youdl/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware rejects clients that exceed their request rate
func RateLimitMiddleware(rateLimitService *service.RateLimitService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !rateLimitService.Allow(ip) {
			log.Warn("Request rejected by rate limit", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Too many requests. Please try again later.",
				Code:    http.StatusTooManyRequests,
			})
			return
		}

		if remaining := rateLimitService.Remaining(ip); remaining >= 0 {
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		}

		c.Next()
	}
}

// QuotaCheckMiddleware rejects download requests from clients whose daily
// quota is exhausted
func QuotaCheckMiddleware(quotaService *service.QuotaService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !quotaService.Enabled() {
			c.Next()
			return
		}

		ip := c.ClientIP()
		allowed, remainingMB := quotaService.CheckQuota(ip, 0)
		if !allowed {
			log.Warn("Quota exhausted", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusPaymentRequired, model.ErrorResponse{
				Error:   "quota_exhausted",
				Message: "Daily download quota exhausted. Please try again after quota reset.",
				Code:    http.StatusPaymentRequired,
			})
			return
		}

		log.Debug("Quota check passed", zap.String("ip", ip), zap.Int64("remaining_mb", remainingMB))
		c.Next()
	}
}

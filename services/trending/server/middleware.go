package server

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Auth returns access-token middleware. Both header styles work:
//
//	X-API-Key: <token>
//	Authorization: Bearer <token>
//
// When no token is configured the middleware is a no-op and the api
// is open.
func Auth(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		got := extractToken(c)
		if got == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ScrapeResponse{
				Success: false,
				Error: &ErrorDetail{
					Code:    ErrCodeUnauthorized,
					Message: "missing access token: provide X-API-Key header or Authorization: Bearer <token>",
				},
			})
			return
		}
		if got != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ScrapeResponse{
				Success: false,
				Error: &ErrorDetail{
					Code:    ErrCodeUnauthorized,
					Message: "invalid access token",
				},
			})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns per-client token bucket rate limiting keyed on the
// client ip. Entries idle for an hour get evicted so the map cannot
// grow without bound.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if burst < 1 {
		burst = 1
	}

	var mu sync.Mutex
	limiters := make(map[string]*limiterEntry)

	getLimiter := func(identity string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		entry, ok := limiters[identity]
		if !ok {
			entry = &limiterEntry{
				limiter: rate.NewLimiter(rate.Limit(rps), burst),
			}
			limiters[identity] = entry
		}
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour)
			mu.Lock()
			for id, entry := range limiters {
				if entry.lastSeen.Before(cutoff) {
					delete(limiters, id)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		if !getLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ScrapeResponse{
				Success: false,
				Error: &ErrorDetail{
					Code:    ErrCodeRateLimited,
					Message: "rate limit exceeded, slow down",
				},
			})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(
			c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start).Round(time.Millisecond).String(),
		)
	}
}

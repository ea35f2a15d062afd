package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/utils"
)

// InvalidAuthRateLimiter counts failed admin logins per IP.
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	limit    int
	window   time.Duration
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewInvalidAuthRateLimiter allows 5 failures per minute per IP.
func NewInvalidAuthRateLimiter() *InvalidAuthRateLimiter {
	return &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptInfo),
		limit:    5,
		window:   time.Minute,
		now:      time.Now,
	}
}

// Blocked reports whether ip has used up its failures for the window.
func (r *InvalidAuthRateLimiter) Blocked(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.attempts[ip]
	if !ok {
		return false
	}
	if r.now().Sub(info.firstAt) > r.window {
		delete(r.attempts, ip)
		return false
	}
	return info.count >= r.limit
}

// Fail records a failed attempt for ip.
func (r *InvalidAuthRateLimiter) Fail(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, ok := r.attempts[ip]
	// Reset if window expired
	if !ok || now.Sub(info.firstAt) > r.window {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return
	}
	info.count++
}

// Handle rejects blocked IPs and counts every 401 the handler returns.
func (r *InvalidAuthRateLimiter) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if r.Blocked(ip) {
			utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() == 401 {
			r.Fail(ip)
		}
	}
}

// Run evicts expired entries until ctx is done.
func (r *InvalidAuthRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for ip, info := range r.attempts {
				if now.Sub(info.firstAt) > r.window {
					delete(r.attempts, ip)
				}
			}
			r.mu.Unlock()
		}
	}
}

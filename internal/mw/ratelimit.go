package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipRateLimiter stores a rate limiter per client IP. Entries idle for
// longer than staleAfter are evicted on the next sweep so the map does
// not grow unbounded over a long-lived process.
type ipRateLimiter struct {
	mu         sync.Mutex
	ips        map[string]*ipEntry
	r          rate.Limit
	b          int
	staleAfter time.Duration
	lastSweep  time.Time
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(r rate.Limit, b int) *ipRateLimiter {
	return &ipRateLimiter{
		ips:        make(map[string]*ipEntry),
		r:          r,
		b:          b,
		staleAfter: 10 * time.Minute,
		lastSweep:  time.Now(),
	}
}

func (i *ipRateLimiter) allow(ip string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := time.Now()
	if now.Sub(i.lastSweep) > i.staleAfter {
		for addr, e := range i.ips {
			if now.Sub(e.lastSeen) > i.staleAfter {
				delete(i.ips, addr)
			}
		}
		i.lastSweep = now
	}

	e, ok := i.ips[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = e
	}
	e.lastSeen = now
	return e.limiter.Allow()
}

// RateLimiter is a middleware for IP-based rate limiting. When ipHeader
// is set (a reverse proxy deployment), the client IP is read from that
// header instead of the connection address.
func RateLimiter(r rate.Limit, b int, ipHeader string) gin.HandlerFunc {
	limiter := newIPRateLimiter(r, b)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ipHeader != "" {
			if v := c.GetHeader(ipHeader); v != "" {
				ip = v
			}
		}
		if !limiter.allow(ip) {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

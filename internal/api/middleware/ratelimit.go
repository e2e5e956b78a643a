package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
)

// clientLimiter is the token bucket for one client.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware applies per-client token-bucket rate limiting. The
// bucket size and refill rate come from .env defaults and can be overridden
// at runtime through the settings service.
type RateLimiterMiddleware struct {
	clients  map[string]*clientLimiter
	mu       sync.Mutex
	cfg      *config.Config
	settings services.ISettingsService
}

// NewRateLimiterMiddleware creates a RateLimiterMiddleware and starts its
// cleanup goroutine.
func NewRateLimiterMiddleware(cfg *config.Config, settings services.ISettingsService) *RateLimiterMiddleware {
	rm := &RateLimiterMiddleware{
		clients:  make(map[string]*clientLimiter),
		cfg:      cfg,
		settings: settings,
	}
	go rm.cleanupClients()
	return rm
}

func (rm *RateLimiterMiddleware) getClientLimiter(identifier string, refillRate, burst int) *clientLimiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	limiter, exists := rm.clients[identifier]
	if !exists {
		limiter = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(refillRate), burst),
		}
		rm.clients[identifier] = limiter
	}
	limiter.lastSeen = time.Now()
	return limiter
}

// cleanupClients periodically drops buckets for clients not seen in a while.
func (rm *RateLimiterMiddleware) cleanupClients() {
	for {
		time.Sleep(10 * time.Minute)
		rm.mu.Lock()
		count := 0
		for id, client := range rm.clients {
			if time.Since(client.lastSeen) > 30*time.Minute {
				delete(rm.clients, id)
				count++
			}
		}
		rm.mu.Unlock()
		if count > 0 {
			log.Printf("Rate limiter cleanup removed %d old client entries.", count)
		}
	}
}

// Limit creates the Gin middleware handler.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := c.ClientIP()

		refillRate := rm.cfg.RateLimitRefillRate
		burst := rm.cfg.RateLimitBucketSize
		if rm.settings != nil {
			refillRate = rm.settings.GetInt(c.Request.Context(), "RATE_LIMIT_REFILL_RATE", refillRate)
			burst = rm.settings.GetInt(c.Request.Context(), "RATE_LIMIT_BUCKET_SIZE", burst)
		}

		limiter := rm.getClientLimiter(clientKey, refillRate, burst)
		if !limiter.limiter.Allow() {
			log.Printf("Rate limit exceeded for client %s on %s", clientKey, c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}

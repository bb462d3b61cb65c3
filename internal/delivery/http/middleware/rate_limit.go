package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-resume-screener/internal/delivery/http/response"
	"go-resume-screener/pkg/logger"
	"go-resume-screener/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// Default: client IP
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// Reject instead of falling back to memory when Redis errors.
	FailClosed bool
}

// DefaultRateLimitConfig is the per-IP limit applied to every API route.
func DefaultRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// KEYS[1] = counter key, ARGV[1] = TTL in seconds.
// Returns {count, ttl}.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// memoryCounter is the fixed-window fallback used when Redis is not
// configured or (fail-open configs only) unreachable.
type memoryCounter struct {
	mu        sync.Mutex
	entries   map[string]*rateLimitEntry
	lastSweep time.Time
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{entries: make(map[string]*rateLimitEntry)}
}

func (m *memoryCounter) incr(key string, window time.Duration, now time.Time) (int, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > window {
		for k, e := range m.entries {
			if now.After(e.resetAt) {
				delete(m.entries, k)
			}
		}
		m.lastSweep = now
	}

	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &rateLimitEntry{resetAt: now.Add(window)}
		m.entries[key] = e
	}
	e.count++
	return e.count, e.resetAt
}

// RateLimitMiddleware counts requests per key in Redis when a client is
// given and in process memory otherwise.
func RateLimitMiddleware(client *goredis.Client, log *logger.Logger, config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	mem := newMemoryCounter()
	audit := security.NewAuditLogger(log)

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var (
			count   int
			resetAt time.Time
			err     error
		)
		if client != nil {
			count, resetAt, err = checkRateLimitRedis(c.Request.Context(), client, fullKey, config)
			if err != nil {
				if config.FailClosed {
					log.Error("rate limit check failed", "path", c.FullPath(), "error", err)
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				log.Warn("rate limit falling back to memory", "error", err)
				count, resetAt = mem.incr(fullKey, config.Window, now)
			}
		} else {
			count, resetAt = mem.incr(fullKey, config.Window, now)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			audit.Log(c.Request.Context(), security.SecurityEvent{
				Event:        security.EventRateLimitTriggered,
				SubjectType:  "ip",
				SubjectValue: c.ClientIP(),
				IP:           c.ClientIP(),
				RequestID:    response.RequestID(c),
				Details:      map[string]interface{}{"path": c.FullPath()},
			})
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-count))
		c.Next()
	}
}

func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())

	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

// UploadRateLimit guards the resume upload route with the sliding-window
// UploadLimiter. A Redis failure rejects the upload.
func UploadRateLimit(limiter *security.UploadLimiter, log *logger.Logger) gin.HandlerFunc {
	audit := security.NewAuditLogger(log)
	return func(c *gin.Context) {
		allowed, retryAfter, err := limiter.AllowUpload(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Error("upload rate limit check failed", "error", err)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.Error(c, http.StatusServiceUnavailable, "Upload temporarily unavailable. Please try again.", nil)
			c.Abort()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			audit.Log(c.Request.Context(), security.SecurityEvent{
				Event:        security.EventUploadLimitTriggered,
				SubjectType:  "ip",
				SubjectValue: c.ClientIP(),
				IP:           c.ClientIP(),
				RequestID:    response.RequestID(c),
			})
			response.Error(c, http.StatusTooManyRequests, "Too many uploads. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

package security

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// UploadLimiter enforces rate limits on resume uploads using a Redis sliding
// window keyed by client IP.
type UploadLimiter struct {
	client       *goredis.Client
	maxPerMinute int
}

// Lua script for sliding window rate limiting
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp
// Returns: 1 if allowed, 0 if rate limited
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)

if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('EXPIRE', key, window)
return 1
`

// NewUploadLimiter creates an upload rate limiter. A nil client disables
// limiting. Default: 10 uploads/min per IP.
func NewUploadLimiter(client *goredis.Client, perMin int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	return &UploadLimiter{
		client:       client,
		maxPerMinute: perMin,
	}
}

// AllowUpload returns (allowed, retryAfterSeconds, error).
// Without Redis it fails open; on Redis errors it fails closed.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, ip string) (bool, int, error) {
	if ul.client == nil {
		return true, 0, nil
	}

	key := fmt.Sprintf("ratelimit:upload:ip:%s", ip)
	allowed, err := ul.checkLimit(ctx, key, ul.maxPerMinute, 60, time.Now().Unix())
	if err != nil {
		return false, 60, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, 60, nil
	}
	return true, 0, nil
}

func (ul *UploadLimiter) checkLimit(ctx context.Context, key string, limit, window int, now int64) (bool, error) {
	result, err := ul.client.Eval(ctx, uploadRateLimitScript, []string{key}, limit, window, now).Result()
	if err != nil {
		return false, err
	}
	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from rate limit script")
	}
	return allowed == 1, nil
}

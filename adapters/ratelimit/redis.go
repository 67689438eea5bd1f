package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/intent-app/auth-service/core"
	"github.com/intent-app/auth-service/ports"
)

// RedisStore is a fixed-window counter shared across instances. INCR plus a
// window-length expiry on the first hit gives atomic read-modify-write
// without cross-request locking.
type RedisStore struct {
	client *redis.Client
	prefix string

	limit  int
	period time.Duration
}

// NewRedisStore creates a Redis-backed limiter allowing limit requests per
// period for each source key.
func NewRedisStore(client *redis.Client, limit int, period time.Duration) ports.RateLimitStore {
	return &RedisStore{
		client: client,
		prefix: "auth:ratelimit:",
		limit:  limit,
		period: period,
	}
}

// Hit records one request for key and decides whether it may proceed.
func (s *RedisStore) Hit(ctx context.Context, key string) (core.RateLimitDecision, error) {
	redisKey := s.prefix + key

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return core.RateLimitDecision{}, fmt.Errorf("ratelimit incr: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, s.period).Err(); err != nil {
			return core.RateLimitDecision{}, fmt.Errorf("ratelimit expire: %w", err)
		}
	}

	if count > int64(s.limit) {
		ttl, err := s.client.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = s.period
		}
		return core.RateLimitDecision{Allowed: false, RetryAfter: ttl}, nil
	}

	return core.RateLimitDecision{Allowed: true, Remaining: s.limit - int(count)}, nil
}

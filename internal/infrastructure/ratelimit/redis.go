package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLimiter is a fixed-window counter on Redis: one INCR per hit, EXPIRE
// on the first hit of each window. The window is identified by its truncated
// start time, so all handler processes share the same counter.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter.
func NewRedisLimiter(client *redis.Client, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "rl:",
		logger: logger,
	}
}

// Allow counts one hit against the window for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (domain.RateLimitResult, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("rate limit pipeline failed", zap.String("key", key), zap.Error(err))
		return domain.RateLimitResult{}, err
	}

	// set expiry on first hit
	if incr.Val() == 1 {
		_ = l.client.Expire(ctx, redisKey, window).Err()
		ttl = l.client.TTL(ctx, redisKey)
	}

	hits := incr.Val()
	remaining := int64(limit) - hits
	if remaining < 0 {
		remaining = 0
	}

	res := domain.RateLimitResult{
		Allowed:   hits <= int64(limit),
		Remaining: remaining,
	}
	if !res.Allowed {
		res.RetryAfter = ttl.Val()
		if res.RetryAfter < 0 {
			res.RetryAfter = window
		}
	}
	return res, nil
}

package ratelimit

import (
	"context"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/database"
	"go.uber.org/zap"
)

// PostgresLimiter is the fixed-window counter when no Redis is configured.
// The whole increment-or-reset is one upsert, so concurrent hits can never
// both observe the same pre-increment count.
type PostgresLimiter struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewPostgresLimiter creates a Postgres-backed fixed-window limiter.
func NewPostgresLimiter(db *database.Postgres, logger *zap.Logger) *PostgresLimiter {
	return &PostgresLimiter{db: db, logger: logger}
}

// Allow counts one hit against the window for key.
func (l *PostgresLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (domain.RateLimitResult, error) {
	now := time.Now().UTC()
	windowEnd := now.Add(window)

	var count int64
	var expiresAt time.Time
	err := l.db.QueryRow(ctx, `
		INSERT INTO rate_limit_logs (key, count, expires_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (key) DO UPDATE SET
			count      = CASE WHEN rate_limit_logs.expires_at <= $3 THEN 1 ELSE rate_limit_logs.count + 1 END,
			expires_at = CASE WHEN rate_limit_logs.expires_at <= $3 THEN $2 ELSE rate_limit_logs.expires_at END
		RETURNING count, expires_at
	`, key, windowEnd, now).Scan(&count, &expiresAt)
	if err != nil {
		l.logger.Error("rate limit upsert failed", zap.String("key", key), zap.Error(err))
		return domain.RateLimitResult{}, err
	}

	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}

	res := domain.RateLimitResult{
		Allowed:   count <= int64(limit),
		Remaining: remaining,
	}
	if !res.Allowed {
		res.RetryAfter = expiresAt.Sub(now)
		if res.RetryAfter < 0 {
			res.RetryAfter = 0
		}
	}
	return res, nil
}

package domain

import (
	"context"
	"time"
)

// Rate-limited operations and their fixed-window defaults.
const (
	RateOpLogin         = "login"
	RateOpSignup        = "signup"
	RateOpPasswordReset = "password_reset"
	RateOpTokenExchange = "token_exchange"
)

// RateWindow describes one fixed window: at most Limit requests per Window.
type RateWindow struct {
	Limit  int
	Window time.Duration
}

// DefaultRateWindows maps operations to their default windows.
var DefaultRateWindows = map[string]RateWindow{
	RateOpLogin:         {Limit: 5, Window: 15 * time.Minute},
	RateOpSignup:        {Limit: 3, Window: time.Hour},
	RateOpPasswordReset: {Limit: 3, Window: time.Hour},
	RateOpTokenExchange: {Limit: 10, Window: time.Minute},
}

// RateKey builds the counter key for an operation and identifier.
func RateKey(operation, identifier string) string {
	return operation + ":" + identifier
}

// RateLimitResult reports the outcome of one counter hit.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter is a fixed-window counter keyed by (operation, identifier). The
// increment-and-compare must be a single atomic store operation; two parallel
// callers must never both observe the same pre-increment value.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}

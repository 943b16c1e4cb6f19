package domain

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session lifetimes by user type.
const (
	DefaultUserSessionDuration  = 7 * 24 * time.Hour
	DefaultAdminSessionDuration = 24 * time.Hour
)

// UserSession is a browser login session, distinct from OAuth tokens. The
// store keeps the SHA-256 hash of the opaque token, never the token itself.
type UserSession struct {
	ID        ulid.ULID `json:"id"`
	TokenHash string    `json:"-"`
	UserID    ulid.ULID `json:"user_id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResult is returned on successful password authentication.
type LoginResult struct {
	User         *User
	SessionToken string
	ExpiresAt    time.Time
}

// SessionRepository defines the data access for login sessions.
type SessionRepository interface {
	// Create stores a new session
	Create(ctx context.Context, session *UserSession) error

	// FindByTokenHash fetches an unexpired session by token hash
	FindByTokenHash(ctx context.Context, hash string) (*UserSession, error)

	// DeleteByTokenHash removes a session; no-op when absent
	DeleteByTokenHash(ctx context.Context, hash string) error

	// DeleteExpired removes sessions past their expiry
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionService guards the human login step.
type SessionService interface {
	// Login authenticates credentials behind rate limiting and lockout
	Login(ctx context.Context, email, password, ip, userAgent string) (*LoginResult, error)

	// ValidateSession resolves a session token to its active user; any
	// failure means unauthenticated, never an error the caller must branch on
	ValidateSession(ctx context.Context, token string) (*User, error)

	// Logout tears the session down; idempotent
	Logout(ctx context.Context, token string) error
}

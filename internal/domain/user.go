package domain

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// User types recognised by the platform. Admin sessions are shorter lived.
const (
	UserTypeUser  = "user"
	UserTypeAdmin = "admin"
)

// Lockout policy defaults.
const (
	DefaultMaxLoginAttempts = 5
	DefaultLockoutDuration  = 30 * time.Minute
)

// User represents a resource owner. Only the fields the authorization core
// reads are modelled; profile management lives elsewhere.
type User struct {
	ID            ulid.ULID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Password      string     `json:"-"` // bcrypt digest, never serialized
	UserType      string     `json:"user_type"`
	LoginAttempts int        `json:"-"`
	LockedUntil   *time.Time `json:"-"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Locked reports whether the account is inside an active lockout window.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// UserRepository defines the data access the core needs for users.
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id ulid.ULID) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// RecordFailedLogin atomically increments the attempt counter and, when
	// the new value reaches threshold, sets locked_until to now+lockFor.
	// Returns the counter value after the increment.
	RecordFailedLogin(ctx context.Context, id ulid.ULID, threshold int, lockFor time.Duration) (int, error)

	// ResetLoginAttempts zeroes the attempt counter and clears any lockout.
	ResetLoginAttempts(ctx context.Context, id ulid.ULID) error
}

package domain

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// AuthorizationCodeDuration is how long an issued code may be redeemed.
const AuthorizationCodeDuration = 10 * time.Minute

// PKCE challenge methods per RFC 7636.
const (
	CodeChallengeS256  = "S256"
	CodeChallengePlain = "plain"
)

// AuthorizationCode is a single-use grant binding a user approval to one
// client, redirect URI and scope.
type AuthorizationCode struct {
	Code                string    `json:"code"`
	ClientID            string    `json:"client_id"`
	UserID              ulid.ULID `json:"user_id"`
	RedirectURI         string    `json:"redirect_uri"`
	Scope               string    `json:"scope"`
	CodeChallenge       string    `json:"code_challenge,omitempty"`
	CodeChallengeMethod string    `json:"code_challenge_method,omitempty"`
	Used                bool      `json:"used"`
	CreatedAt           time.Time `json:"created_at"`
	ExpiresAt           time.Time `json:"expires_at"`
}

// Expired reports whether the code is past its redemption window.
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// UserGrant is the outcome of a successful code redemption.
type UserGrant struct {
	UserID   ulid.ULID
	ClientID string
	Scope    string
}

// AuthorizationCodeRepository defines the data access for authorization codes.
type AuthorizationCodeRepository interface {
	// Create stores a freshly issued code
	Create(ctx context.Context, code *AuthorizationCode) error

	// Get fetches a code record without consuming it
	Get(ctx context.Context, code string) (*AuthorizationCode, error)

	// Consume flips used from false to true. The write is conditional: of N
	// concurrent callers exactly one succeeds, the rest get ErrCodeConsumed.
	Consume(ctx context.Context, code string) error

	// DeleteExpired removes codes past their expiry; correctness never
	// depends on it running
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuthorizationService issues and redeems single-use authorization codes.
type AuthorizationService interface {
	CreateCode(ctx context.Context, clientID string, userID ulid.ULID, redirectURI, scope, codeChallenge, codeChallengeMethod string) (string, error)
	RedeemCode(ctx context.Context, code, clientID, redirectURI, codeVerifier string) (*UserGrant, error)
}

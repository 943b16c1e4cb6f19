package domain

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Token lifetimes.
const (
	DefaultAccessTokenDuration  = time.Hour
	DefaultRefreshTokenDuration = 30 * 24 * time.Hour
)

// Token type hints per RFC 7009.
const (
	TokenTypeAccess  = "access_token"
	TokenTypeRefresh = "refresh_token"
)

// TokenPair is the success shape of the token endpoint.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
}

// Claims is the JWT payload for both token kinds. Refresh tokens carry
// TokenUse "refresh" to keep the two from being swapped.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	UserType string `json:"user_type,omitempty"`
	Scope    string `json:"scope,omitempty"`
	ClientID string `json:"client_id"`
	TokenUse string `json:"token_use,omitempty"`
}

// AccessTokenRecord is the stored reference for an issued access token: the
// SHA-256 hash of the signed JWT plus the metadata needed for revocation.
type AccessTokenRecord struct {
	ID        ulid.ULID `json:"id"`
	TokenHash string    `json:"-"`
	ClientID  string    `json:"client_id"`
	UserID    ulid.ULID `json:"user_id"`
	Scope     string    `json:"scope"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry.
func (t *AccessTokenRecord) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// RefreshTokenRecord links 1:1 to the access token it was minted alongside.
type RefreshTokenRecord struct {
	ID            ulid.ULID `json:"id"`
	TokenHash     string    `json:"-"`
	AccessTokenID ulid.ULID `json:"access_token_id"`
	Revoked       bool      `json:"revoked"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry.
func (t *RefreshTokenRecord) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// TokenRepository defines the data access for token records.
type TokenRepository interface {
	// CreatePair stores an access/refresh record pair in one transaction
	CreatePair(ctx context.Context, access *AccessTokenRecord, refresh *RefreshTokenRecord) error

	// FindAccessTokenByHash fetches an access record by token hash
	FindAccessTokenByHash(ctx context.Context, hash string) (*AccessTokenRecord, error)

	// FindRefreshTokenByHash fetches a refresh record and its paired access record
	FindRefreshTokenByHash(ctx context.Context, hash string) (*RefreshTokenRecord, *AccessTokenRecord, error)

	// Rotate revokes the old pair and stores the new one in a single
	// transaction. The revocation is conditional on the refresh record being
	// unrevoked; a concurrent rotation loses and gets ErrTokenNotFound.
	Rotate(ctx context.Context, oldRefreshID, oldAccessID ulid.ULID, access *AccessTokenRecord, refresh *RefreshTokenRecord) error

	// RevokeAccessTokenByHash marks an access record revoked; no-op when absent
	RevokeAccessTokenByHash(ctx context.Context, hash string) error

	// RevokeRefreshTokenByHash marks a refresh record and its paired access
	// record revoked; no-op when absent
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
}

// JWTSigner signs and verifies the platform's JWTs.
type JWTSigner interface {
	Sign(claims *Claims) (string, error)
	Verify(token string) (*Claims, error)
	AccessDuration() time.Duration
	RefreshDuration() time.Duration
}

// TokenService mints, rotates, revokes and verifies token pairs.
type TokenService interface {
	// IssueTokenPair signs a fresh access/refresh pair for the user and
	// persists the hashed records
	IssueTokenPair(ctx context.Context, userID ulid.ULID, clientID, scope string) (*TokenPair, error)

	// RotateRefreshToken redeems a refresh token: the presented token and its
	// paired access token are revoked and a new pair is minted. Replays fail
	// with ErrInvalidGrant.
	RotateRefreshToken(ctx context.Context, refreshToken, clientID string) (*TokenPair, error)

	// Revoke marks the matching record revoked; idempotent per RFC 7009
	Revoke(ctx context.Context, token, tokenTypeHint string) error

	// VerifyAccessToken runs both mandatory checks: record lookup
	// (exists, unrevoked, unexpired) and independent JWT verification
	VerifyAccessToken(ctx context.Context, token string) (*AccessTokenRecord, *Claims, error)
}

package domain

import "errors"

var (
	// ErrInvalidClient is returned when the client is unknown, inactive or
	// presents a wrong secret
	ErrInvalidClient = errors.New("invalid client")

	// ErrInvalidRedirectURI is returned when the redirect URI is not registered for the client
	ErrInvalidRedirectURI = errors.New("invalid redirect uri")

	// ErrInvalidScope is returned when a requested scope is not allowed
	ErrInvalidScope = errors.New("invalid scope")

	// ErrInvalidGrant is the uniform failure for code redemption and refresh
	// rotation; the precise cause is logged server-side only
	ErrInvalidGrant = errors.New("invalid grant")

	// ErrInvalidToken is returned when a bearer token fails record or signature checks
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a JWT is past its expiry claim
	ErrTokenExpired = errors.New("token expired")

	// ErrInsufficientScope is returned when a token lacks a required scope
	ErrInsufficientScope = errors.New("insufficient scope")

	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password so login cannot be used to enumerate users
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked is returned while a lockout window is active
	ErrAccountLocked = errors.New("account locked")

	// ErrAccountDeactivated is returned when the user is not active
	ErrAccountDeactivated = errors.New("account deactivated")

	// ErrRateLimited is returned when a fixed-window counter is exhausted
	ErrRateLimited = errors.New("rate limited")

	// ErrSessionNotFound is returned when a session token does not resolve
	ErrSessionNotFound = errors.New("session not found")

	// ErrUserNotFound is an internal lookup failure; never surfaced on login
	ErrUserNotFound = errors.New("user not found")

	// ErrClientNotFound is an internal lookup failure, mapped to ErrInvalidClient
	ErrClientNotFound = errors.New("client not found")

	// ErrCodeNotFound is an internal redemption failure, mapped to ErrInvalidGrant
	ErrCodeNotFound = errors.New("authorization code not found")

	// ErrCodeConsumed is returned by the conditional consume when the code
	// was already redeemed
	ErrCodeConsumed = errors.New("authorization code already used")

	// ErrTokenNotFound is an internal token-record lookup failure
	ErrTokenNotFound = errors.New("token record not found")

	// ErrInternal is returned when a store operation fails unexpectedly
	ErrInternal = errors.New("internal server error")
)

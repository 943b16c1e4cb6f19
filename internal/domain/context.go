package domain

import "context"

// ContextKey is a type for context keys to avoid magic strings
type ContextKey string

const (
	// ContextKeySessionUser is the key for the session-authenticated user
	ContextKeySessionUser ContextKey = "session_user"
	// ContextKeyGrant is the key for the verified bearer grant
	ContextKeyGrant ContextKey = "bearer_grant"
)

// BearerGrant is the read-only view a guarded handler gets of the verified
// token: who, which client, and which scopes. Handlers cannot reach token
// state through it.
type BearerGrant struct {
	UserID   string
	Email    string
	UserType string
	ClientID string
	Scopes   []string
}

// WithSessionUser adds the session-authenticated user to the context
func WithSessionUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ContextKeySessionUser, user)
}

// GetSessionUser retrieves the session-authenticated user from the context
func GetSessionUser(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ContextKeySessionUser).(*User)
	return user, ok
}

// WithGrant adds the verified bearer grant to the context
func WithGrant(ctx context.Context, grant *BearerGrant) context.Context {
	return context.WithValue(ctx, ContextKeyGrant, grant)
}

// GetGrant retrieves the verified bearer grant from the context
func GetGrant(ctx context.Context) (*BearerGrant, bool) {
	grant, ok := ctx.Value(ContextKeyGrant).(*BearerGrant)
	return grant, ok
}

package domain

import (
	"context"
	"time"
)

// Client represents a registered OAuth2 client. Records are created by the
// administration panel and are read-only to this core.
type Client struct {
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"-"`
	Name         string    `json:"name"`
	RedirectURIs []string  `json:"redirect_uris"`
	Scopes       []string  `json:"scopes"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public reports whether the client was registered without a secret (PKCE-only).
func (c *Client) Public() bool {
	return c.ClientSecret == ""
}

// ClientRepository defines the data access for OAuth2 clients.
type ClientRepository interface {
	// FindByClientID finds a client by its public identifier
	FindByClientID(ctx context.Context, clientID string) (*Client, error)
}

// ClientService validates client credentials, redirect URIs and scopes.
type ClientService interface {
	// ValidateClient looks up an active client and, when a secret is supplied,
	// requires an exact match. Public clients may omit the secret.
	ValidateClient(ctx context.Context, clientID, clientSecret string) (*Client, error)

	// ValidateRedirectURI checks exact membership in the client's registered URIs.
	ValidateRedirectURI(client *Client, uri string) bool

	// ValidateScope checks every scope token against the global allow-list and
	// the client's registered subset.
	ValidateScope(client *Client, scope string) bool
}

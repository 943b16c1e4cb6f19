package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitScope(t *testing.T) {
	assert.Empty(t, SplitScope(""))
	assert.Equal(t, []string{"openid"}, SplitScope("openid"))
	assert.Equal(t, []string{"openid", "clubs:read"}, SplitScope("openid  clubs:read"))
}

func TestScopeAllowed(t *testing.T) {
	clientScopes := []string{"openid", "profile", "clubs:read"}

	tests := []struct {
		name    string
		scope   string
		allowed bool
	}{
		{"empty scope is trivially valid", "", true},
		{"single registered scope", "openid", true},
		{"all registered scopes", "openid profile clubs:read", true},
		{"scope not registered for client", "clubs:write", false},
		{"one bad token rejects the whole request", "openid clubs:write", false},
		{"scope outside the global allow-list", "galaxies:read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, ScopeAllowed(tt.scope, clientScopes))
		})
	}
}

func TestScopeCovers(t *testing.T) {
	granted := []string{"openid", "clubs:read"}

	assert.True(t, ScopeCovers(granted, nil))
	assert.True(t, ScopeCovers(granted, []string{"clubs:read"}))
	assert.True(t, ScopeCovers(granted, []string{"openid", "clubs:read"}))
	assert.False(t, ScopeCovers(granted, []string{"clubs:write"}))
	assert.False(t, ScopeCovers(granted, []string{"clubs:read", "clubs:write"}))
}

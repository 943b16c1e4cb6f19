package domain

import "strings"

// GlobalScopes is the platform-wide allow-list. A scope outside this list is
// rejected regardless of what a client has registered.
var GlobalScopes = []string{
	"openid",
	"profile",
	"email",
	"users:read",
	"users:write",
	"clubs:read",
	"clubs:write",
	"clubs:members",
	"players:read",
	"players:write",
	"federations:read",
	"ambassadors:read",
	"ambassadors:write",
}

// SplitScope splits a scope string on whitespace into individual scope tokens.
// An empty string yields an empty slice.
func SplitScope(scope string) []string {
	return strings.Fields(scope)
}

// JoinScope is the inverse of SplitScope.
func JoinScope(scopes []string) string {
	return strings.Join(scopes, " ")
}

// ScopeInList reports whether scope is present in list.
func ScopeInList(scope string, list []string) bool {
	for _, s := range list {
		if s == scope {
			return true
		}
	}
	return false
}

// ScopeAllowed reports whether every token of scope is present both in the
// global allow-list and in the client's registered scopes. The empty scope is
// trivially allowed.
func ScopeAllowed(scope string, clientScopes []string) bool {
	for _, s := range SplitScope(scope) {
		if !ScopeInList(s, GlobalScopes) || !ScopeInList(s, clientScopes) {
			return false
		}
	}
	return true
}

// ScopeCovers reports whether tokenScopes contains every required scope.
func ScopeCovers(tokenScopes, required []string) bool {
	for _, r := range required {
		if !ScopeInList(r, tokenScopes) {
			return false
		}
	}
	return true
}

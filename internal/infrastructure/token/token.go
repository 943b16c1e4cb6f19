package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// Generate returns an unguessable opaque token: nBytes of crypto/rand output
// as base64url without padding. Used for authorization codes and session
// tokens.
func Generate(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hash returns sha256(s) as base64url without padding. Token stores keep
// hashes, never the presented value.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

package password

import (
	"errors"

	"github.com/arenalink/auth-service/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Hash hashes a password using bcrypt
func Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Check compares a password against its bcrypt digest
func Check(password, digest string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrInvalidCredentials
		}
		return err
	}
	return nil
}

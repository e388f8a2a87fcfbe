package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrSecretMismatch is returned when a secret does not match its hash
var ErrSecretMismatch = errors.New("secret does not match")

// HashSecret hashes a plain text secret using bcrypt
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifySecret checks a plain text secret against a bcrypt hash.
// An empty hash never matches.
func VerifySecret(hashedSecret, secret string) error {
	if hashedSecret == "" {
		return ErrSecretMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrSecretMismatch
	}
	return err
}

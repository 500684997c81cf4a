package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Work factors used by the quiz backend.
const (
	// PasswordCost protects account passwords.
	PasswordCost = 12
	// OTPCost protects short lived one time codes.
	OTPCost = 10
)

var (
	ErrPasswordMismatch = errors.New("cryptox: password mismatch")
	ErrEmptySecret      = errors.New("cryptox: empty secret")
)

// HashSecret hashes a password or code with bcrypt at the given cost.
// A cost outside bcrypt's bounds falls back to bcrypt.DefaultCost.
func HashSecret(secret string, cost int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	b, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: bcrypt: %w", err)
	}
	return string(b), nil
}

// VerifySecret compares secret against a bcrypt hash in constant time.
// It returns ErrPasswordMismatch for a wrong secret and a wrapped error for
// a corrupt hash.
func VerifySecret(hash, secret string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("cryptox: bcrypt compare: %w", err)
	}
}

// HashCost reports the cost a hash was produced with.
func HashCost(hash string) (int, error) {
	return bcrypt.Cost([]byte(hash))
}

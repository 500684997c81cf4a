package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACSecret is the shortest accepted shared secret, in bytes.
const MinHMACSecret = 32

// HMACSigner signs and verifies HS256 tokens with one shared secret.
type HMACSigner struct {
	kid    string
	secret []byte
	issuer string
	aud    []string
}

// NewHMACSigner returns a combined signer and verifier for HS256.
func NewHMACSigner(kid string, secret []byte, issuer string, aud []string) (*HMACSigner, error) {
	if len(secret) < MinHMACSecret {
		return nil, ErrWeakSecret
	}
	return &HMACSigner{kid: kid, secret: secret, issuer: issuer, aud: aud}, nil
}

func (s *HMACSigner) Alg() string { return jwt.SigningMethodHS256.Alg() }
func (s *HMACSigner) KID() string { return s.kid }

func (s *HMACSigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.secret)
}

func (s *HMACSigner) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != "" && kid != s.kid {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}
		return s.secret, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	return claims, checkClaims(&claims, s.issuer, s.aud)
}

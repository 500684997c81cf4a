package service

import (
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/jwtx"
)

// TokenIssuer signs bearer tokens for accounts.
type TokenIssuer struct {
	Keys     *jwtx.KeyManager
	Issuer   string
	Audience []string
	TTL      time.Duration
}

// Token is the credential handed to a client after login or registration.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
}

func (t *TokenIssuer) Issue(u domain.User, now time.Time) (Token, error) {
	ttl := t.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}

	claims := jwtx.NewClaims(u.ID, string(u.Role), u.Name, string(u.UserType), t.Issuer, t.Audience, ttl, now)
	signed, err := t.Keys.Sign(claims)
	if err != nil {
		return Token{}, err
	}

	return Token{AccessToken: signed, ExpiresAt: claims.ExpiresAtTime(), ExpiresIn: ttl}, nil
}

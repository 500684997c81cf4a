package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	t.Parallel()

	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "mytestbuddies"}}

	require.NoError(t, c.ValidateIssuer("mytestbuddies"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("someone-else"), jwtx.ErrIssuer)
}

func TestValidateAudience(t *testing.T) {
	t.Parallel()

	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Audience: []string{"quiz-api", "admin-ui"}}}

	require.NoError(t, c.ValidateAudience([]string{"admin-ui"}))
	require.NoError(t, c.ValidateAudience(nil))
	require.ErrorIs(t, c.ValidateAudience([]string{"billing"}), jwtx.ErrAudience)
}

func TestValidateExpiryAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := jwtx.NewClaims("user-1", "user", "Asha", "student", "iss", nil, time.Hour, now)

	t.Run("inside window", func(t *testing.T) {
		require.NoError(t, c.ValidateExpiryAt(now.Add(30*time.Minute), 0))
	})

	t.Run("after expiry", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateExpiryAt(now.Add(time.Hour+time.Second), 0), jwtx.ErrExpired)
	})

	t.Run("leeway absorbs skew", func(t *testing.T) {
		require.NoError(t, c.ValidateExpiryAt(now.Add(time.Hour+time.Second), 5*time.Second))
	})

	t.Run("before nbf", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateExpiryAt(now.Add(-time.Minute), 0), jwtx.ErrNotYetValid)
	})
}

func TestNewClaims(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	c := jwtx.NewClaims("u1", "admin", "Root", "general", "iss", []string{"aud"}, jwtx.DefaultTokenTTL, now)

	require.Equal(t, "u1", c.Subject)
	require.Equal(t, "admin", c.Role)
	require.Equal(t, now.Add(24*time.Hour), c.ExpiresAtTime())
	require.NotEmpty(t, c.ID)
	require.NotEqual(t, c.ID, jwtx.NewJTI())
}

package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newManagers(t *testing.T) map[string]*jwtx.KeyManager {
	t.Helper()

	opts := jwtx.KeyManagerOptions{Issuer: "mytestbuddies", Audience: []string{"quiz-api"}}

	eddsa, err := jwtx.NewEphemeralKeyManager(opts)
	require.NoError(t, err)

	hmac, err := jwtx.NewHMACKeyManager(opts, []byte(testSecret))
	require.NoError(t, err)

	return map[string]*jwtx.KeyManager{
		jwtx.AlgorithmEdDSA: eddsa,
		jwtx.AlgorithmHS256: hmac,
	}
}

func TestKeyManagerRoundTrip(t *testing.T) {
	t.Parallel()

	for alg, km := range newManagers(t) {
		t.Run(alg, func(t *testing.T) {
			require.Equal(t, alg, km.Algorithm())
			require.True(t, km.IsReady())

			claims := jwtx.NewClaims("user-42", "user", "Ravi", "student", "mytestbuddies", []string{"quiz-api"}, time.Hour, time.Now().UTC())
			token, err := km.Sign(claims)
			require.NoError(t, err)

			got, err := km.Verify(token)
			require.NoError(t, err)
			require.Equal(t, "user-42", got.Subject)
			require.Equal(t, "user", got.Role)
			require.Equal(t, "Ravi", got.Name)
		})
	}
}

func TestKeyManagerRejects(t *testing.T) {
	t.Parallel()

	for alg, km := range newManagers(t) {
		t.Run(alg, func(t *testing.T) {
			now := time.Now().UTC()

			t.Run("expired", func(t *testing.T) {
				c := jwtx.NewClaims("u", "user", "", "", "mytestbuddies", []string{"quiz-api"}, time.Minute, now.Add(-time.Hour))
				token, err := km.Sign(c)
				require.NoError(t, err)

				_, err = km.Verify(token)
				require.ErrorIs(t, err, jwtx.ErrExpired)
			})

			t.Run("wrong issuer", func(t *testing.T) {
				c := jwtx.NewClaims("u", "user", "", "", "elsewhere", []string{"quiz-api"}, time.Hour, now)
				token, err := km.Sign(c)
				require.NoError(t, err)

				_, err = km.Verify(token)
				require.ErrorIs(t, err, jwtx.ErrIssuer)
			})

			t.Run("tampered signature", func(t *testing.T) {
				c := jwtx.NewClaims("u", "user", "", "", "mytestbuddies", []string{"quiz-api"}, time.Hour, now)
				token, err := km.Sign(c)
				require.NoError(t, err)

				parts := strings.Split(token, ".")
				sig := []byte(parts[2])
				if sig[0] == 'A' {
					sig[0] = 'B'
				} else {
					sig[0] = 'A'
				}
				parts[2] = string(sig)

				_, err = km.Verify(strings.Join(parts, "."))
				require.Error(t, err)
			})

			t.Run("garbage", func(t *testing.T) {
				_, err := km.Verify("not-a-token")
				require.ErrorIs(t, err, jwtx.ErrMalformed)
			})
		})
	}
}

func TestKeyManagersDoNotTrustEachOther(t *testing.T) {
	t.Parallel()

	m := newManagers(t)
	c := jwtx.NewClaims("u", "admin", "", "", "mytestbuddies", []string{"quiz-api"}, time.Hour, time.Now().UTC())

	token, err := m[jwtx.AlgorithmHS256].Sign(c)
	require.NoError(t, err)

	_, err = m[jwtx.AlgorithmEdDSA].Verify(token)
	require.Error(t, err)
}

func TestEphemeralKeyManagerPublishesJWKS(t *testing.T) {
	t.Parallel()

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "iss", NumKeys: 3})
	require.NoError(t, err)

	jwks := km.KeySet.PublicJWKS()
	require.Len(t, jwks.Keys, 3)
	for _, k := range jwks.Keys {
		require.Equal(t, "OKP", k.Kty)
		require.Equal(t, "Ed25519", k.Crv)
		require.True(t, strings.HasPrefix(k.Kid, "quiz-"))

		_, err := k.PublicKey()
		require.NoError(t, err)
	}
}

func TestNewHMACKeyManagerRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewHMACKeyManager(jwtx.KeyManagerOptions{Issuer: "iss"}, []byte("short"))
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)

	_, err = jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{})
	require.Error(t, err)
}

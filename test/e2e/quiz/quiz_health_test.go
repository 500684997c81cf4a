package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/himanshu0633/mytestbuddiesbackend/pkg/quizsdk"
)

func TestHealthEndpoints(t *testing.T) {
	c := setupQuizContainer(t, nil)
	client := quizsdk.NewClient(c.BaseURL)

	t.Run("livez", func(t *testing.T) {
		health, err := client.GetLiveness(t.Context())
		assertHealthy(t, health, err)
	})

	t.Run("readyz", func(t *testing.T) {
		health, err := client.GetReadiness(t.Context())
		assertHealthy(t, health, err)
		require.NotNil(t, health.Checks)
		require.Equal(t, "ok", health.Checks.Database)
	})

	t.Run("jwks ephemeral", func(t *testing.T) {
		jwks, err := client.GetJWKS(t.Context())
		require.NoError(t, err)
		require.Len(t, jwks.Keys, 1, "QUIZ_NUM_KEYS=1 should publish one key")
		require.Equal(t, "EdDSA", jwks.Keys[0].Alg)
	})
}

// TestSharedSecretTokens verifies HS256 mode publishes no keys and tokens
// still authenticate.
func TestSharedSecretTokens(t *testing.T) {
	c := setupQuizContainer(t, map[string]string{
		"QUIZ_JWT_SECRET": "e2e-shared-secret-0123456789abcdef",
	})
	client := quizsdk.NewClient(c.BaseURL)

	jwks, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.Empty(t, jwks.Keys)

	admin := loginAdmin(t, client)
	me, err := admin.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, adminEmail, me.Email)
}

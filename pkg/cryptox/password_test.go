package cryptox_test

import (
	"testing"

	"github.com/himanshu0633/mytestbuddiesbackend/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifySecret(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashSecret("correct horse", 4)
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)

	cost, err := cryptox.HashCost(hash)
	require.NoError(t, err)
	require.Equal(t, 4, cost)

	t.Run("match", func(t *testing.T) {
		require.NoError(t, cryptox.VerifySecret(hash, "correct horse"))
	})

	t.Run("mismatch", func(t *testing.T) {
		require.ErrorIs(t, cryptox.VerifySecret(hash, "Correct horse"), cryptox.ErrPasswordMismatch)
	})

	t.Run("corrupt hash", func(t *testing.T) {
		err := cryptox.VerifySecret("not-a-bcrypt-hash", "correct horse")
		require.Error(t, err)
		require.NotErrorIs(t, err, cryptox.ErrPasswordMismatch)
	})
}

func TestHashSecretProducesSaltedHashes(t *testing.T) {
	t.Parallel()

	a, err := cryptox.HashSecret("123456", 4)
	require.NoError(t, err)
	b, err := cryptox.HashSecret("123456", 4)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestHashSecretRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := cryptox.HashSecret("", cryptox.PasswordCost)
	require.ErrorIs(t, err, cryptox.ErrEmptySecret)
}

func TestHashSecretClampsCost(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashSecret("pw", 99)
	require.NoError(t, err)

	cost, err := cryptox.HashCost(hash)
	require.NoError(t, err)
	require.Equal(t, 10, cost)
}

package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	t.Run("output is PHC argon2id and not the plaintext", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery staple")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
		require.NotContains(t, hash, "correct horse battery staple")
	})

	t.Run("same input hashes differently", func(t *testing.T) {
		first, err := HashPassword("secret1234")
		require.NoError(t, err)
		second, err := HashPassword("secret1234")
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret1234")
	require.NoError(t, err)

	t.Run("accepts the original password", func(t *testing.T) {
		require.NoError(t, VerifyPassword("secret1234", hash))
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		err := VerifyPassword("not-the-password", hash)
		require.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("malformed hashes error instead of panicking", func(t *testing.T) {
		for _, bad := range []string{
			"",
			"plain-text",
			"$argon2id$v=19$m=65536,t=3,p=2$only-four-parts",
			"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
			"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=banana$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",
		} {
			err := VerifyPassword("secret1234", bad)
			require.Error(t, err, "hash %q", bad)
			require.NotErrorIs(t, err, ErrPasswordMismatch, "hash %q", bad)
		}
	})
}

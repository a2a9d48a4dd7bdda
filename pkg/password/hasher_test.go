package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/password"
)

func fastHasher() *password.Hasher {
	return password.NewHasher(password.Config{Time: 1, MemoryKiB: 64, Threads: 1})
}

func TestHasher_Hash(t *testing.T) {
	t.Parallel()

	h := fastHasher()

	t.Run("produces PHC encoded argon2id", func(t *testing.T) {
		t.Parallel()

		encoded, err := h.Hash("correct horse")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=64,t=1,p=1$"))
		assert.Len(t, strings.Split(encoded, "$"), 6)
	})

	t.Run("salts every hash", func(t *testing.T) {
		t.Parallel()

		a, err := h.Hash("same")
		require.NoError(t, err)
		b, err := h.Hash("same")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestHasher_Verify(t *testing.T) {
	t.Parallel()

	h := fastHasher()
	encoded, err := h.Hash("correct horse")
	require.NoError(t, err)

	t.Run("accepts the right password", func(t *testing.T) {
		t.Parallel()

		ok, err := h.Verify("correct horse", encoded)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects a wrong password without error", func(t *testing.T) {
		t.Parallel()

		ok, err := h.Verify("battery staple", encoded)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("uses parameters from the encoded hash", func(t *testing.T) {
		t.Parallel()

		other := password.NewHasher(password.Config{Time: 3, MemoryKiB: 128, Threads: 2})
		ok, err := other.Verify("correct horse", encoded)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects malformed hashes", func(t *testing.T) {
		t.Parallel()

		for _, bad := range []string{
			"",
			"plain",
			"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
			"$argon2id$v=19$m=64,t=1$c2FsdA$a2V5",
			"$argon2id$v=19$m=64,t=1,p=1$!!$a2V5",
			"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		} {
			_, err := h.Verify("x", bad)
			assert.ErrorIs(t, err, password.ErrInvalidHash, bad)
		}
	})

	t.Run("rejects other argon2 versions", func(t *testing.T) {
		t.Parallel()

		_, err := h.Verify("x", "$argon2id$v=16$m=64,t=1,p=1$c2FsdA$a2V5")
		assert.ErrorIs(t, err, password.ErrIncompatibleVersion)
	})
}

func TestNewHasher_Defaults(t *testing.T) {
	t.Parallel()

	encoded, err := password.NewHasher(password.Config{}).Hash("pw")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$m=19456,t=2,p=1$")
}

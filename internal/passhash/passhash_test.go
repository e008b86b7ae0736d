package passhash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashThenVerify(t *testing.T) {
	hasher, err := New(bcrypt.MinCost)
	require.NoError(t, err)

	for _, password := range []string{"secret1", "пароль", " spaced ", "x"} {
		hashed, err := hasher.Hash(password)
		require.NoError(t, err)
		assert.NotEqual(t, password, hashed)

		ok, err := hasher.Verify(password, hashed)
		require.NoError(t, err)
		assert.True(t, ok, "the password should match its own hash")

		ok, err = hasher.Verify(password+"-other", hashed)
		require.NoError(t, err)
		assert.False(t, ok, "a different password should not match")
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher, err := New(bcrypt.MinCost)
	require.NoError(t, err)

	first, err := hasher.Hash("secret1")
	require.NoError(t, err)
	second, err := hasher.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher, err := New(bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := hasher.Verify("secret1", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestNewRejectsCostOutOfRange(t *testing.T) {
	_, err := New(bcrypt.MinCost - 1)
	assert.Error(t, err)

	_, err = New(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestHashRejectsTooLongPassword(t *testing.T) {
	hasher, err := New(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = hasher.Hash(strings.Repeat("a", 73))
	assert.Error(t, err)
}

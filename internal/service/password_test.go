package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("abc123")
	require.NoError(t, err)
	assert.NotEqual(t, "abc123", hash)
	assert.Contains(t, hash, ":")

	assert.True(t, VerifyPassword("abc123", hash))
	assert.False(t, VerifyPassword("abc124", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	for _, encoded := range []string{"", "nocolon", "bad:base64!!", "a:b:c"} {
		assert.False(t, VerifyPassword("abc123", encoded), "encoded %q", encoded)
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("abc123")
	require.NoError(t, err)
	second, err := HashPassword("abc123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("abc123", first))
	assert.True(t, VerifyPassword("abc123", second))
}

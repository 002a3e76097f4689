package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Format(t *testing.T) {
	hash, err := HashPassword("p1")
	require.NoError(t, err)

	salt, digest, ok := strings.Cut(hash, ":")
	require.True(t, ok, "hash must be salt:digest")
	assert.NotEmpty(t, salt)
	assert.NotEmpty(t, digest)
	assert.NotContains(t, hash, "p1")
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("correct horse", hash))
	assert.False(t, VerifyPassword("wrong horse", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, stored := range []string{
		"",
		"no-colon-at-all",
		"notsalthex:deadbeef",
		"deadbeef:notdigesthex",
	} {
		assert.False(t, VerifyPassword("anything", stored), "stored=%q", stored)
	}
}

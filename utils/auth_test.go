package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22pass")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("hunter22pass", hash))
	assert.False(t, CheckPasswordHash("hunter23pass", hash))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("sam@example.co.uk"))
	assert.False(t, IsValidEmail("sam@localhost"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("Sam <sam@example.com>"))
}

func TestIsWeakPassword(t *testing.T) {
	assert.True(t, IsWeakPassword("short1"))
	assert.True(t, IsWeakPassword("allletters"))
	assert.True(t, IsWeakPassword("1234567890"))
	assert.False(t, IsWeakPassword("bricks4days"))
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(16)
	require.NoError(t, err)
	b, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}

func TestGenerateRandomPassword(t *testing.T) {
	p1, err := GenerateRandomPassword(16)
	require.NoError(t, err)
	assert.Len(t, p1, 16)
	for _, c := range p1 {
		assert.True(t, strings.ContainsRune(passwordAlphabet, c))
	}

	p2, err := GenerateRandomPassword(16)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}

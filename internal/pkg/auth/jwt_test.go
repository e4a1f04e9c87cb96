package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

func testJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "campulse-test",
	})
}

func testUser() *models.User {
	return &models.User{ID: 42, Email: "jeanne@example.org", IsStaff: false}
}

func TestGenerateTokenPair(t *testing.T) {
	s := testJWTService()

	access, refresh, expiresIn, refreshExpiresIn, err := s.GenerateTokenPair(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)
	assert.Equal(t, int((15 * time.Minute).Seconds()), expiresIn)
	assert.Equal(t, int((24 * time.Hour).Seconds()), refreshExpiresIn)
}

func TestValidateAndExtractClaims(t *testing.T) {
	s := testJWTService()
	access, refresh, _, _, err := s.GenerateTokenPair(testUser())
	require.NoError(t, err)

	claims, err := s.ValidateAndExtractClaims(access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "jeanne@example.org", claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	// A refresh token must never authenticate a request.
	_, err = s.ValidateAndExtractClaims(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRefreshToken(t *testing.T) {
	s := testJWTService()
	access, refresh, _, _, err := s.GenerateTokenPair(testUser())
	require.NoError(t, err)

	claims, err := s.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, int64(42), claims.UserID)

	_, err = s.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	s := testJWTService()
	access, _, _, _, err := s.GenerateTokenPair(testUser())
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{
		SecretKey:       "another-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "campulse-test",
	})
	_, err = other.ValidateToken(access)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	s := NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  -time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "campulse-test",
	})
	access, _, _, _, err := s.GenerateTokenPair(testUser())
	require.NoError(t, err)

	_, err = s.ValidateToken(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

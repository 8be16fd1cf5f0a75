package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong-pass"))
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateAccessToken(42, "coach@example.com", "staff", 3, "test-secret")
	require.NoError(t, err)

	claims, err := ValidateToken(token, "test-secret")
	require.NoError(t, err)

	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "coach@example.com", claims.Email)
	assert.Equal(t, "staff", claims.Role)
	assert.Equal(t, 3, claims.GymID)
	assert.Equal(t, "access", claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@b.c", "member", 0, "secret-one")
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret-two")
	assert.Error(t, err)
}

func TestValidateToken_EmptySecret(t *testing.T) {
	_, err := GenerateAccessToken(1, "a@b.c", "member", 0, "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)

	_, err = ValidateToken("whatever", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestRefreshAccessToken(t *testing.T) {
	_, refreshToken, err := GenerateTokens(7, "m@gym.kz", "member", 0, "access-secret", "refresh-secret")
	require.NoError(t, err)

	newAccess, claims, err := RefreshAccessToken(refreshToken, "refresh-secret", "access-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.Equal(t, 7, claims.UserID)

	validated, err := ValidateToken(newAccess, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, "access", validated.TokenType)
}

func TestRefreshAccessToken_RejectsAccessToken(t *testing.T) {
	accessToken, err := GenerateAccessToken(7, "m@gym.kz", "member", 0, "access-secret")
	require.NoError(t, err)

	_, _, err = RefreshAccessToken(accessToken, "access-secret", "access-secret")
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestTokenTTLs(t *testing.T) {
	assert.Equal(t, 15*time.Minute, AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, RefreshTokenTTL)
}

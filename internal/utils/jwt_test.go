package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", "admin", "ADMIN", 30)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	parsed, err := jwt.Parse(tok.Token, func(token *jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
}

func TestNewAccessTokenExpiry(t *testing.T) {
	tok, err := NewAccessToken("secret", "admin", "ADMIN", 30)
	require.NoError(t, err)

	remaining := time.Until(tok.Exp)
	assert.Greater(t, remaining, 29*time.Minute)
	assert.LessOrEqual(t, remaining, 30*time.Minute)
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", "admin", "ADMIN", 30)
	require.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(token *jwt.Token) (any, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("pass1234", 10)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "pass1234"))
	assert.False(t, VerifyPassword(hash, "pass12345"))
	assert.False(t, VerifyPassword("not-a-hash", "pass1234"))
}

package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	service := NewJWTService("secret", time.Minute)

	token, err := service.GenerateToken("alice@example.com")
	require.NoError(t, err)

	userID, err := service.ValidateToken(*token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", *userID)
}

func TestValidateTokenWithoutExpClaim(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "alice@example.com",
	})
	signed, err := raw.SignedString([]byte("secret"))
	require.NoError(t, err)

	service := NewJWTService("secret", time.Minute)
	_, err = service.ValidateToken(signed)
	assert.ErrorContains(t, err, "exp claim")
}

func TestValidateTokenWrongSecret(t *testing.T) {
	service := NewJWTService("secret", time.Minute)
	token, err := service.GenerateToken("alice@example.com")
	require.NoError(t, err)

	other := NewJWTService("different", time.Minute)
	_, err = other.ValidateToken(*token)
	assert.Error(t, err)
}

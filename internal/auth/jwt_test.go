package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough!"

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, 15*time.Minute, 24*time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken("user-123", "ana@example.com", "customer")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestJWTService_RefreshTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, 15*time.Minute, 24*time.Hour)

	token, _, err := svc.GenerateRefreshToken("user-123")
	require.NoError(t, err)

	userID, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	svc := NewJWTService(testSecret, -time.Minute, 24*time.Hour)

	token, _, err := svc.GenerateAccessToken("user-123", "ana@example.com", "customer")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateAccessToken_WrongSecret(t *testing.T) {
	svc := NewJWTService(testSecret, 15*time.Minute, 24*time.Hour)
	other := NewJWTService("a-completely-different-secret-key!!!", 15*time.Minute, 24*time.Hour)

	token, _, err := svc.GenerateAccessToken("user-123", "ana@example.com", "customer")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_Garbage(t *testing.T) {
	svc := NewJWTService(testSecret, 15*time.Minute, 24*time.Hour)

	for _, token := range []string{"", "not.a.jwt", "aaaa"} {
		_, err := svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

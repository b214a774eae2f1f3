package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestGenerateAccessToken(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, "+14155550100", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "+14155550100", claims.Phone)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestGenerateRefreshToken(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	token, err := service.GenerateRefreshToken(userID, "+14155550100")
	require.NoError(t, err)

	claims, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestValidateAccessToken_RejectsWrongType(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	refresh, err := service.GenerateRefreshToken(userID, "+14155550100")
	require.NoError(t, err)

	// A refresh token must never pass as an access token, even though
	// it is well formed
	claims, err := service.ValidateAccessToken(refresh)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	access, err := service.GenerateAccessToken(userID, "+14155550100", "customer")
	require.NoError(t, err)

	claims, err := service.ValidateRefreshToken(access)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	service := newTestService()
	other := NewService("other-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	token, err := other.GenerateAccessToken(userID, "+14155550100", "customer")
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	service := NewService("access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, "+14155550100", "customer")
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	service := newTestService()

	claims, err := service.ValidateAccessToken("not-a-token")
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestExtractClaims(t *testing.T) {
	service := NewService("access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, "+14155550100", "manager")
	require.NoError(t, err)

	// Extraction skips validation, so expired tokens still parse
	claims, err := service.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "manager", claims.Role)
}

func TestIsTokenExpired(t *testing.T) {
	userID := uuid.New()

	t.Run("Fresh Token", func(t *testing.T) {
		service := newTestService()
		token, err := service.GenerateAccessToken(userID, "+14155550100", "customer")
		require.NoError(t, err)

		assert.False(t, service.IsTokenExpired(token))
	})

	t.Run("Expired Token", func(t *testing.T) {
		service := NewService("access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour)
		token, err := service.GenerateAccessToken(userID, "+14155550100", "customer")
		require.NoError(t, err)

		assert.True(t, service.IsTokenExpired(token))
	})

	t.Run("Garbage Token", func(t *testing.T) {
		assert.True(t, newTestService().IsTokenExpired("not-a-token"))
	})
}

package auth

import (
	"testing"
	"time"

	"github.com/naasdev/naas/internal/config"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAPIKey(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Auth.APIKey.Keys = map[string]config.APIKeyDetails{
		HashAPIKey("sk_active"):   {UserID: "user_1", Name: "ops", IsActive: true},
		HashAPIKey("sk_disabled"): {UserID: "user_2", Name: "old", IsActive: false},
	}

	userID, ok := ValidateAPIKey(cfg, "sk_active")
	assert.True(t, ok)
	assert.Equal(t, "user_1", userID)

	_, ok = ValidateAPIKey(cfg, "sk_disabled")
	assert.False(t, ok)

	_, ok = ValidateAPIKey(cfg, "sk_unknown")
	assert.False(t, ok)

	_, ok = ValidateAPIKey(cfg, "")
	assert.False(t, ok)
}

func TestTokenService(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "test-secret"
	svc := NewTokenService(cfg)

	token, err := svc.GenerateToken("user_1", time.Now(), time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID)

	expired, err := svc.GenerateToken("user_1", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	require.Error(t, err)
	assert.True(t, ierr.IsPermissionDenied(err))

	other := NewTokenService(&config.Configuration{Auth: config.AuthConfig{Secret: "other"}})
	_, err = other.ValidateToken(token)
	assert.True(t, ierr.IsPermissionDenied(err))
}

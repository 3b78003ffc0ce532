package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/naasdev/naas/internal/auth"
	"github.com/naasdev/naas/internal/config"
	"github.com/naasdev/naas/internal/types"
)

// GenerateNewAPIKey generates a new API key and prints the config entry for it
func GenerateNewAPIKey() error {
	rawKey := auth.GenerateAPIKey()
	hashedKey := auth.HashAPIKey(rawKey)

	details := config.APIKeyDetails{
		UserID:   envOr("USER_ID", types.DefaultUserID),
		Name:     envOr("KEY_NAME", "Dev API Key"),
		IsActive: true,
	}

	keysMap := map[string]config.APIKeyDetails{
		hashedKey: details,
	}

	jsonBytes, err := json.Marshal(keysMap)
	if err != nil {
		return err
	}

	fmt.Printf("\nNew API Key Generated:\n")
	fmt.Printf("Raw Key (store it now, only the hash is kept): %s\n", rawKey)
	fmt.Printf("\nConfiguration:\n")
	fmt.Printf("Add this to your config.yaml under auth.api_key.keys:\n")
	fmt.Printf("%s:\n", hashedKey)
	fmt.Printf("  user_id: %s\n", details.UserID)
	fmt.Printf("  name: %s\n", details.Name)
	fmt.Printf("  is_active: %v\n", details.IsActive)
	fmt.Printf("\nOr set this environment variable:\n")
	fmt.Printf("NAAS_AUTH_API_KEY_KEYS='%s'\n", string(jsonBytes))

	return nil
}

// GenerateToken signs a bearer token with the configured auth secret
func GenerateToken() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", raw, err)
		}
	}

	userID := envOr("USER_ID", types.DefaultUserID)
	token, err := auth.NewTokenService(cfg).GenerateToken(userID, time.Now().UTC(), ttl)
	if err != nil {
		return err
	}

	fmt.Printf("Token for %s (expires in %s):\n%s\n", userID, ttl, token)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

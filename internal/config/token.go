package config

import (
	"fmt"

	"github.com/google/uuid"
)

const apiTokenKey = "api.token"

// GetAPIToken returns the bearer token protecting the admin API, generating
// and persisting one on first use.
func GetAPIToken(b ConfigBackend) (string, error) {
	token, ok, err := b.GetString(apiTokenKey)
	if err != nil {
		return "", fmt.Errorf("reading API token: %w", err)
	}
	if ok && token != "" {
		return token, nil
	}

	token = uuid.NewString()
	if err := b.SetString(apiTokenKey, token); err != nil {
		return "", fmt.Errorf("persisting API token: %w", err)
	}
	return token, nil
}

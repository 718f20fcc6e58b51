package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// The service name groups the engine's secrets in the OS keychain.
	KeyringService = "jobboard"

	providerAccount = "jobboard:provider-api-key"
)

// GetProviderAPIKey resolves the external provider's API key: environment
// first (deployments), then the OS keychain (local runs).
func GetProviderAPIKey(envName string) (string, error) {
	if envName != "" {
		if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
			return v, nil
		}
	}

	key, err := keyring.Get(KeyringService, providerAccount)
	if err == nil && strings.TrimSpace(key) != "" {
		return key, nil
	}

	return "", errors.New("provider API key not found (set it via env or the keychain)")
}

func SetProviderAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, providerAccount, key)
}

func DeleteProviderAPIKey() error {
	return keyring.Delete(KeyringService, providerAccount)
}

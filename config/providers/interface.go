// Package providers contains the pluggable configuration sources behind
// the SDK configuration manager.
package providers

import (
	"context"
	"fmt"
)

// ProviderType identifies a configuration source.
type ProviderType string

const (
	ProviderTypeAzureKeyVault ProviderType = "azure-keyvault"
	ProviderTypeEnvFile       ProviderType = "env-file"
)

// ConfigProvider is implemented by every configuration source.
type ConfigProvider interface {
	// Get retrieves a configuration value by key.
	Get(ctx context.Context, key string) (string, error)

	// GetWithDefault retrieves a configuration value with fallback to default.
	GetWithDefault(ctx context.Context, key, defaultValue string) (string, error)

	// TestConnection verifies the source is reachable.
	TestConnection(ctx context.Context) error
}

// ProviderConfig holds the settings for one provider instance.
type ProviderConfig struct {
	ProviderType ProviderType           `json:"provider_type"`
	Config       map[string]interface{} `json:"config"`
}

// ProviderFactory creates configuration providers.
type ProviderFactory struct{}

// NewProvider creates a provider for the given configuration.
func (pf *ProviderFactory) NewProvider(config ProviderConfig) (ConfigProvider, error) {
	switch config.ProviderType {
	case ProviderTypeAzureKeyVault:
		return NewAzureKeyVaultProvider(config)
	case ProviderTypeEnvFile:
		return NewEnvFileProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.ProviderType)
	}
}

// ValidateProviderConfig validates the settings for a provider type.
func (pf *ProviderFactory) ValidateProviderConfig(config ProviderConfig) error {
	switch config.ProviderType {
	case ProviderTypeAzureKeyVault:
		return validateAzureKeyVaultConfig(config)
	case ProviderTypeEnvFile:
		return validateEnvFileConfig(config)
	default:
		return fmt.Errorf("unsupported provider type: %s", config.ProviderType)
	}
}

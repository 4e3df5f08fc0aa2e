// Package config manages SDK configuration from pluggable sources.
// The source is selected with CONFIG_SOURCE (env-file by default); other
// sources fall back to environment variables for keys they cannot serve.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"ucrm.com.tr/sdk/config/providers"
)

// Well-known SDK configuration keys.
const (
	KeyAPIURL      = "UCRM_API_URL"
	KeyLoginURL    = "UCRM_LOGIN_URL"
	KeySessionFile = "UCRM_SESSION_FILE"
	KeyLogLevel    = "UCRM_LOG_LEVEL"
)

// ConfigManager resolves configuration values from a primary provider
// with an env-file fallback.
type ConfigManager struct {
	configSource     string
	provider         providers.ConfigProvider
	fallbackProvider providers.ConfigProvider
	log              *logrus.Logger
}

// NewConfigManager creates a configuration manager. CONFIG_SOURCE and
// CONFIG_SOURCE_CONFIG bootstrap the provider selection and must be read
// straight from the environment since no manager exists yet.
func NewConfigManager() (*ConfigManager, error) {
	configSource := os.Getenv("CONFIG_SOURCE")
	if configSource == "" {
		configSource = "env-file"
	}

	var configSourceConfig map[string]interface{}
	if configSource != "env-file" {
		configSourceConfigStr := os.Getenv("CONFIG_SOURCE_CONFIG")
		if configSourceConfigStr != "" {
			if err := json.Unmarshal([]byte(configSourceConfigStr), &configSourceConfig); err != nil {
				return nil, fmt.Errorf("failed to parse CONFIG_SOURCE_CONFIG: %w", err)
			}
		}
	}

	factory := &providers.ProviderFactory{}

	providerConfig := providers.ProviderConfig{
		ProviderType: providers.ProviderType(configSource),
		Config:       configSourceConfig,
	}

	if err := factory.ValidateProviderConfig(providerConfig); err != nil {
		return nil, fmt.Errorf("invalid provider configuration: %w", err)
	}

	provider, err := factory.NewProvider(providerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary provider: %w", err)
	}

	fallbackConfig := providers.ProviderConfig{
		ProviderType: providers.ProviderTypeEnvFile,
		Config:       make(map[string]interface{}),
	}

	fallbackProvider, err := factory.NewProvider(fallbackConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback provider: %w", err)
	}

	log := logrus.New()

	if err := provider.TestConnection(context.Background()); err != nil {
		log.WithError(err).Warn("primary provider connection failed, will use fallback")
	}

	cm := &ConfigManager{
		configSource:     configSource,
		provider:         provider,
		fallbackProvider: fallbackProvider,
		log:              log,
	}

	log.WithField("config_source", configSource).Info("configuration manager initialized")

	return cm, nil
}

// Get retrieves a configuration value; a missing key resolves to "".
func (cm *ConfigManager) Get(key string) string {
	ctx := context.Background()

	// env-file keys pass through as-is; other sources need normalization
	var searchKey string
	if cm.configSource == "env-file" {
		searchKey = key
	} else {
		searchKey = cm.normalizeKey(key)
	}

	value, err := cm.provider.Get(ctx, searchKey)
	if err != nil {
		// if the primary already is env-file the fallback would fail the
		// same way
		if cm.configSource == "env-file" {
			return ""
		}
		cm.log.WithError(err).WithFields(logrus.Fields{
			"key":        key,
			"search_key": searchKey,
		}).Debug("primary provider failed, falling back to env-file")

		value, err = cm.fallbackProvider.Get(ctx, key)
		if err != nil {
			return ""
		}
	}

	return value
}

// GetWithDefault retrieves a configuration value with fallback.
func (cm *ConfigManager) GetWithDefault(key, defaultValue string) string {
	if value := cm.Get(key); value != "" {
		return value
	}
	return defaultValue
}

// IsKeyVaultEnabled reports whether Azure Key Vault is the primary source.
func (cm *ConfigManager) IsKeyVaultEnabled() bool {
	return cm.configSource == "azure-keyvault"
}

// GetConfigSource returns the active configuration source name.
func (cm *ConfigManager) GetConfigSource() string {
	return cm.configSource
}

// normalizeKey rewrites keys for sources with naming restrictions.
func (cm *ConfigManager) normalizeKey(key string) string {
	switch cm.configSource {
	case "azure-keyvault":
		// Key Vault secret names cannot contain underscores
		return strings.ReplaceAll(key, "_", "-")
	default:
		return key
	}
}

package config

import (
	"os"
	"testing"
)

func TestGetConfig(t *testing.T) {
	testKey := "TEST_CONFIG_KEY"
	testValue := "test_config_value"

	os.Setenv(testKey, testValue)
	defer os.Unsetenv(testKey)

	err := InitGlobalConfig()
	if err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	result := GetConfig(testKey)
	if result != testValue {
		t.Errorf("GetConfig(%s) = %s; want %s", testKey, result, testValue)
	}

	result = GetConfigWithDefault(testKey, "default_value")
	if result != testValue {
		t.Errorf("GetConfigWithDefault(%s, 'default_value') = %s; want %s", testKey, result, testValue)
	}

	nonExistentKey := "NON_EXISTENT_KEY"
	defaultValue := "default_value"
	result = GetConfigWithDefault(nonExistentKey, defaultValue)
	if result != defaultValue {
		t.Errorf("GetConfigWithDefault(%s, %s) = %s; want %s", nonExistentKey, defaultValue, result, defaultValue)
	}
}

func TestIsGlobalConfigInitialized(t *testing.T) {
	err := InitGlobalConfig()
	if err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	if !IsGlobalConfigInitialized() {
		t.Error("IsGlobalConfigInitialized() = false; want true")
	}
}

func TestConfigManagerCreation(t *testing.T) {
	manager, err := NewConfigManager()
	if err != nil {
		t.Fatalf("NewConfigManager() failed: %v", err)
	}

	if manager == nil {
		t.Fatal("NewConfigManager() returned nil manager")
	}

	testKey := "TEST_MANAGER_KEY"
	testValue := "test_manager_value"
	os.Setenv(testKey, testValue)
	defer os.Unsetenv(testKey)

	result := manager.Get(testKey)
	if result != testValue {
		t.Errorf("manager.Get(%s) = %s; want %s", testKey, result, testValue)
	}
}

func TestSDKKeys(t *testing.T) {
	os.Setenv(KeyAPIURL, "https://crm.example.com.tr")
	defer os.Unsetenv(KeyAPIURL)

	manager, err := NewConfigManager()
	if err != nil {
		t.Fatalf("NewConfigManager() failed: %v", err)
	}

	if got := manager.Get(KeyAPIURL); got != "https://crm.example.com.tr" {
		t.Errorf("manager.Get(KeyAPIURL) = %s; want https://crm.example.com.tr", got)
	}
	if got := manager.GetWithDefault(KeyLoginURL, "https://login.ucrm.com.tr"); got != "https://login.ucrm.com.tr" {
		t.Errorf("manager.GetWithDefault(KeyLoginURL, ...) = %s; want the default", got)
	}
}

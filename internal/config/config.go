package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds photo search API configuration
type APIConfig struct {
	BaseURL       string `mapstructure:"base_url"`       // Search API root
	CredentialKey string `mapstructure:"credential_key"` // Secret-store key for the API credential
	PageSize      int    `mapstructure:"page_size"`      // Results per page
}

// StorageConfig holds on-disk storage locations and limits
type StorageConfig struct {
	CacheDir        string `mapstructure:"cache_dir"`         // Ephemeral image cache
	FavoritesDir    string `mapstructure:"favorites_dir"`     // Durable favorite assets
	DataDir         string `mapstructure:"data_dir"`          // bbolt databases
	SecretsDir      string `mapstructure:"secrets_dir"`       // File-based secret store
	CacheMaxEntries int    `mapstructure:"cache_max_entries"` // Ephemeral cache capacity
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "https://api.unsplash.com",
			CredentialKey: "unsplash_api_key",
			PageSize:      20,
		},
		Storage: StorageConfig{
			CacheDir:        filepath.Join(defaultDataPath(), "cache"),
			FavoritesDir:    filepath.Join(defaultDataPath(), "favorites"),
			DataDir:         defaultDataPath(),
			SecretsDir:      filepath.Join(defaultDataPath(), "secrets"),
			CacheMaxEntries: 20,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "lumen.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "lumen")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "lumen")
	}
}

// defaultConfigPath returns the default config file directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "lumen")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "lumen")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("LUMEN")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("api.base_url", cfg.API.BaseURL)
	viper.Set("api.credential_key", cfg.API.CredentialKey)
	viper.Set("api.page_size", cfg.API.PageSize)

	viper.Set("storage.cache_dir", cfg.Storage.CacheDir)
	viper.Set("storage.favorites_dir", cfg.Storage.FavoritesDir)
	viper.Set("storage.data_dir", cfg.Storage.DataDir)
	viper.Set("storage.secrets_dir", cfg.Storage.SecretsDir)
	viper.Set("storage.cache_max_entries", cfg.Storage.CacheMaxEntries)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

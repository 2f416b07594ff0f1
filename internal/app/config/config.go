package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	API         APIConfig
	Auth        AuthConfig
	Storage     StorageConfig
	Defaults    DefaultsConfig
	Log         LogConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	TokenPath   string
	DeviceToken string
}

type StorageConfig struct {
	DownloadDir string
}

// DefaultsConfig seeds the initial server-side filter state.
type DefaultsConfig struct {
	Status     string
	Department string
}

type LogConfig struct {
	Level string
}

// Load configuration from environment variables
func Load() (*Config, error) {
	// Load .env file in non-production environments
	env := os.Getenv("ENVIRONMENT")
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			// .env file is optional
		}
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		API: APIConfig{
			BaseURL: getEnv("API_URL", ""),
			Timeout: parseDuration(getEnv("API_TIMEOUT", "30s")),
		},
		Auth: AuthConfig{
			TokenPath:   getEnv("TOKEN_PATH", defaultTokenPath()),
			DeviceToken: getEnv("DEVICE_TOKEN", ""),
		},
		Storage: StorageConfig{
			DownloadDir: getEnv("DOWNLOAD_DIR", defaultDownloadDir()),
		},
		Defaults: DefaultsConfig{
			Status:     getEnv("DEFAULT_STATUS", "pending"),
			Department: getEnv("DEFAULT_DEPARTMENT", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	// Validate required configuration
	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsTest returns true if running in test environment
func (c *Config) IsTest() bool {
	return c.Environment == "test"
}

func validate(config *Config) error {
	if config.API.BaseURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if config.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be a positive duration")
	}
	return nil
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".docuflow", "token")
	}
	return filepath.Join(home, ".docuflow", "token")
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "downloads"
	}
	return filepath.Join(home, "Downloads")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return 0
}

package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets from the config file.
const (
	EnvServerPass   = "PERCHBOT_SERVER_PASS"
	EnvNickServPass = "PERCHBOT_NICKSERV_PASS"
)

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(c)
}

// LoadConfig loads the configuration at path, TOML unless the extension says YAML. Values
// from a .env file next to it and from the environment override the secrets.
func LoadConfig(path string) (*Config, error) {
	var config Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Get absolute path for better error messages
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", absPath, err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", absPath, err)
		}
	default:
		if _, err := toml.DecodeFile(path, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", absPath, err)
		}
	}

	if err := loadEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// loadEnv reads envFile into the environment without replacing variables already set. A
// missing file is not an error.
func loadEnv(envFile string) error {
	err := godotenv.Load(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error loading %s: %w", envFile, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvServerPass); v != "" {
		c.Network.Pass = v
	}
	if v := os.Getenv(EnvNickServPass); v != "" {
		c.Network.NickServPass = v
	}
}

func (b Bot) WhoisTimeoutDuration() time.Duration {
	return time.Duration(b.WhoisTimeout) * time.Second
}

func (b Bot) FloodBan() time.Duration {
	return time.Duration(b.FloodIgnoreMinutes) * time.Minute
}

func (b Bot) ReconnectDelayDuration() time.Duration {
	return time.Duration(b.ReconnectDelay) * time.Second
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/spellbook/internal/logr"
)

const (
	DefaultListen = ":8080"

	appName = "spellbook"
)

// Config represents the application configuration
type Config struct {
	StorePath      string      `toml:"store_path"`
	Listen         string      `toml:"listen"`
	RequestLogging bool        `toml:"request_logging"`
	Log            logr.Config `toml:"log"`
	Auth           AuthConfig  `toml:"auth"`
}

// AuthConfig holds the API keys accepted by the server, keyed by owner. No
// keys means authentication is disabled.
type AuthConfig struct {
	APIKeys map[string]string `toml:"api_keys"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		StorePath: DefaultStorePath(),
		Listen:    DefaultListen,
		Log:       logr.Config{Format: string(logr.TextFormat)},
	}
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// DefaultStorePath returns the path to the card document
func DefaultStorePath() string {
	return filepath.Join(GetXDGDataHome(), appName, "cards.json")
}

// DefaultConfigFilePath returns the path to the config file
func DefaultConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), appName, "config.toml")
}

// Load reads the config file at path. A missing file yields the defaults.
// Settings absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStorePath()
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	return cfg, nil
}

// Write writes cfg to path as TOML, creating parent directories.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}

// APIKeys returns the configured key values.
func (c *Config) APIKeys() []string {
	keys := make([]string, 0, len(c.Auth.APIKeys))
	for _, k := range c.Auth.APIKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Package config manages server configuration stored in config.yml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// filename is the configuration file name inside the data directory.
const filename = "config.yml"

// Config stores all server-wide configuration.
// Loaded from config.yml in the data directory, created with defaults if
// missing.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// MaxRequestBodyBytes limits the size of any single HTTP request body.
	// 0 means unlimited.
	MaxRequestBodyBytes int64 `yaml:"max_request_body_bytes"`

	// WriteRatePerMin limits mutating requests per client per minute.
	// 0 means unlimited.
	WriteRatePerMin int `yaml:"write_rate_per_min"`

	// GitAuthorName and GitAuthorEmail identify data-directory commits.
	GitAuthorName  string `yaml:"git_author_name"`
	GitAuthorEmail string `yaml:"git_author_email"`

	// WatchDataFile enables reloading when the table file is edited
	// externally.
	WatchDataFile bool `yaml:"watch_data_file"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Addr:                "localhost:8080",
		LogLevel:            "info",
		MaxRequestBodyBytes: 8 << 20,
		WriteRatePerMin:     120,
		GitAuthorName:       "callbook",
		GitAuthorEmail:      "callbook@localhost",
		WatchDataFile:       true,
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
	if c.MaxRequestBodyBytes < 0 {
		return errors.New("max_request_body_bytes must be non-negative")
	}
	if c.WriteRatePerMin < 0 {
		return errors.New("write_rate_per_min must be non-negative")
	}
	return nil
}

// Load reads config.yml from dataDir, creating it with defaults when
// missing.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, filename)
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is built from the data-dir flag.
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		cfg := Default()
		if err := cfg.Save(dataDir); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the configuration to config.yml in dataDir.
func (c *Config) Save(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dataDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: config holds no secrets.
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

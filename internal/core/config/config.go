// Package config handles configuration loading and validation for topicwala.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverJSONFile = "jsonfile"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Store    StoreConfig    `yaml:"store"`
	Relay    RelayConfig    `yaml:"relay"`
	Access   AccessConfig   `yaml:"access"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// TelegramConfig holds bot connection settings. The token is never read from
// the config file.
type TelegramConfig struct {
	PollTimeout int    `yaml:"poll_timeout"` // long-poll timeout in seconds
	Debug       bool   `yaml:"debug"`
	Token       string `yaml:"-"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // jsonfile, sqlite, postgres
	DSN    string `yaml:"dsn"`    // postgres connection string; sqlite path override
}

// RelayConfig tunes the relay engine.
type RelayConfig struct {
	// DefaultThreadID receives live messages without a topic. Zero is the general thread.
	DefaultThreadID int `yaml:"default_thread_id"`
	// FallbackLabel names the thread for replayed messages without a topic.
	FallbackLabel string `yaml:"fallback_label"`
	// ReplayRate is the number of messages replayed per second.
	ReplayRate float64 `yaml:"replay_rate"`
}

// AccessConfig lists users that bypass every access check.
type AccessConfig struct {
	SuperAdmins []int64 `yaml:"super_admins"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Telegram: TelegramConfig{
			PollTimeout: 30,
		},
		Store: StoreConfig{
			Driver: DriverJSONFile,
		},
		Relay: RelayConfig{
			FallbackLabel: "General",
			ReplayRate:    1,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Telegram.PollTimeout == 0 {
		c.Telegram.PollTimeout = defaults.Telegram.PollTimeout
	}
	if c.Store.Driver == "" {
		c.Store.Driver = defaults.Store.Driver
	}
	if c.Relay.FallbackLabel == "" {
		c.Relay.FallbackLabel = defaults.Relay.FallbackLabel
	}
	if c.Relay.ReplayRate == 0 {
		c.Relay.ReplayRate = defaults.Relay.ReplayRate
	}
}

// StateFile returns the path to the JSON state file.
func (c *Config) StateFile() string {
	return filepath.Join(c.DataDir, "state.json")
}

// SQLitePath returns the sqlite database path.
func (c *Config) SQLitePath() string {
	if c.Store.Driver == DriverSQLite && c.Store.DSN != "" {
		return c.Store.DSN
	}
	return filepath.Join(c.DataDir, "topicwala.db")
}

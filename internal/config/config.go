// ABOUTME: Configuration loading and parsing for dexbot
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete dexbot configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Tailscale   TailscaleConfig   `yaml:"tailscale"`
	Database    DatabaseConfig    `yaml:"database"`
	Bot         BotConfig         `yaml:"bot"`
	Sessions    SessionsConfig    `yaml:"sessions"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds the health/status HTTP listener configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BotConfig holds the bot identity and content configuration
type BotConfig struct {
	// AdminNumber is the operator's number in any accepted spelling; it is
	// normalized at startup.
	AdminNumber string `yaml:"admin_number"`
	// TableImage is the path to the package table image; when empty or
	// missing, a text fallback is sent instead.
	TableImage string `yaml:"table_image"`
	// PersistQueueSize bounds the async registration queue.
	PersistQueueSize int `yaml:"persist_queue_size"`
}

// SessionsConfig holds session lifecycle timing configuration
type SessionsConfig struct {
	Horizon          time.Duration `yaml:"-"`
	EvictionInterval time.Duration `yaml:"-"`
	MessageTimeout   time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	HorizonRaw          string `yaml:"horizon"`
	EvictionIntervalRaw string `yaml:"eviction_interval"`
	MessageTimeoutRaw   string `yaml:"message_timeout"`
}

// MaintenanceConfig holds backup and reporting configuration
type MaintenanceConfig struct {
	BackupDir string `yaml:"backup_dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in the timing and capacity fields that have sensible
// fixed defaults.
func (c *Config) applyDefaults() {
	if c.Sessions.HorizonRaw == "" {
		c.Sessions.HorizonRaw = "24h"
	}
	if c.Sessions.EvictionIntervalRaw == "" {
		c.Sessions.EvictionIntervalRaw = "1h"
	}
	if c.Sessions.MessageTimeoutRaw == "" {
		c.Sessions.MessageTimeoutRaw = "10s"
	}
	if c.Bot.PersistQueueSize == 0 {
		c.Bot.PersistQueueSize = 256
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// A health listener is required unless Tailscale serves it
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Bot.AdminNumber == "" {
		return fmt.Errorf("bot.admin_number is required")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Sessions.HorizonRaw != "" {
		cfg.Sessions.Horizon, err = time.ParseDuration(cfg.Sessions.HorizonRaw)
		if err != nil {
			return fmt.Errorf("parsing horizon %q: %w", cfg.Sessions.HorizonRaw, err)
		}
	}

	if cfg.Sessions.EvictionIntervalRaw != "" {
		cfg.Sessions.EvictionInterval, err = time.ParseDuration(cfg.Sessions.EvictionIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing eviction_interval %q: %w", cfg.Sessions.EvictionIntervalRaw, err)
		}
	}

	if cfg.Sessions.MessageTimeoutRaw != "" {
		cfg.Sessions.MessageTimeout, err = time.ParseDuration(cfg.Sessions.MessageTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing message_timeout %q: %w", cfg.Sessions.MessageTimeoutRaw, err)
		}
	}

	return nil
}

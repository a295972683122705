// Package common provides shared utilities for marketctx
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for marketctx
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	News        NewsConfig    `toml:"news"`
	Session     SessionConfig `toml:"session"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig holds SurrealDB connection settings.
type StorageConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	RateLimit       int    `toml:"rate_limit"`
	Timeout         string `toml:"timeout"`
	DefaultExchange string `toml:"default_exchange"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// GetDefaultExchange returns the configured default exchange, upper-cased.
func (c *EODHDConfig) GetDefaultExchange() string {
	ex := strings.ToUpper(strings.TrimSpace(c.DefaultExchange))
	if ex == "" {
		return "US"
	}
	return ex
}

// NewsConfig holds the news cache windows.
type NewsConfig struct {
	CacheHours    int    `toml:"cache_hours"`
	RetentionDays int    `toml:"retention_days"`
	PurgeInterval string `toml:"purge_interval"`
}

// GetPurgeInterval parses the purge interval, defaulting to one hour.
func (c *NewsConfig) GetPurgeInterval() time.Duration {
	d, err := time.ParseDuration(c.PurgeInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// SessionConfig holds the conversation history cache limits.
type SessionConfig struct {
	TTL         string `toml:"ttl"`
	MaxMessages int    `toml:"max_messages"`
}

// GetTTL returns the session TTL, never below one minute.
func (c *SessionConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		d = 2 * time.Hour
	}
	if d < time.Minute {
		d = time.Minute
	}
	return d
}

// GetMaxMessages returns the per-session message cap, never below two.
func (c *SessionConfig) GetMaxMessages() int {
	if c.MaxMessages < 2 {
		return 2
	}
	return c.MaxMessages
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000/rpc",
			Namespace: "marketctx",
			Database:  "market",
			Username:  "root",
			Password:  "root",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:         "https://eodhd.com/api",
				RateLimit:       10,
				Timeout:         "60s",
				DefaultExchange: "US",
			},
		},
		News: NewsConfig{
			CacheHours:    24,
			RetentionDays: 30,
			PurgeInterval: "1h",
		},
		Session: SessionConfig{
			TTL:         "2h",
			MaxMessages: 20,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Outputs:    []string{"console"},
			FilePath:   "./logs/marketctx.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MARKETCTX_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("MARKETCTX_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("MARKETCTX_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("MARKETCTX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("MARKETCTX_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("MARKETCTX_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("MARKETCTX_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}

	if v := os.Getenv("MARKETCTX_DEFAULT_EXCHANGE"); v != "" {
		config.Clients.EODHD.DefaultExchange = strings.ToUpper(v)
	}

	// EODHD_API_TOKEN takes precedence over the alternate name
	for _, name := range []string{"EODHD_API_TOKEN", "EODHD_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.EODHD.APIKey = v
			break
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// ValidateRequired returns the names of required settings that are missing.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Clients.EODHD.APIKey == "" {
		missing = append(missing, "clients.eodhd.api_key")
	}
	if c.Storage.Address == "" {
		missing = append(missing, "storage.address")
	}
	return missing
}

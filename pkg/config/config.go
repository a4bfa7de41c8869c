package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Telegram Bot API
	TelegramToken string `yaml:"telegram_token"`

	// Hotels API (RapidAPI)
	HotelsAPIKey  string `yaml:"hotels_api_key"`
	HotelsAPIHost string `yaml:"hotels_api_host"`

	// Search Configuration
	Search SearchConfig `yaml:"search"`

	// Runtime Configuration
	Runtime RuntimeConfig `yaml:"runtime"`
}

// SearchConfig holds search tuning knobs
type SearchConfig struct {
	MaxHotels      int `yaml:"max_hotels"`
	MaxPhotos      int `yaml:"max_photos"`
	PageSize       int `yaml:"page_size"`
	RequestTimeout int `yaml:"request_timeout_seconds"`
}

// RuntimeConfig holds runtime configuration
type RuntimeConfig struct {
	ObservabilityPort int  `yaml:"observability_port"`
	EnableMetrics     bool `yaml:"enable_metrics"`
	LongPollTimeout   int  `yaml:"long_poll_timeout_seconds"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	return &cfg, nil
}

// Default returns a configuration built from defaults and the environment,
// for running without a config file. Metrics are on; a config file has
// to enable them explicitly.
func Default() *Config {
	cfg := &Config{}
	cfg.Runtime.EnableMetrics = true
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.HotelsAPIHost == "" {
		c.HotelsAPIHost = "hotels4.p.rapidapi.com"
	}
	if c.Search.MaxHotels == 0 {
		c.Search.MaxHotels = 5
	}
	if c.Search.MaxPhotos == 0 {
		c.Search.MaxPhotos = 5
	}
	if c.Search.PageSize == 0 {
		c.Search.PageSize = 200
	}
	if c.Search.RequestTimeout == 0 {
		c.Search.RequestTimeout = 30
	}
	if c.Runtime.ObservabilityPort == 0 {
		c.Runtime.ObservabilityPort = 9090
	}
	if c.Runtime.LongPollTimeout == 0 {
		c.Runtime.LongPollTimeout = 10
	}
}

// Load secrets from environment if not in config
func (c *Config) applyEnv() {
	if c.TelegramToken == "" {
		c.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	}
	if c.HotelsAPIKey == "" {
		c.HotelsAPIKey = os.Getenv("HOTELS_API_KEY")
	}
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("telegram_token is required")
	}

	if c.HotelsAPIKey == "" {
		return fmt.Errorf("hotels_api_key is required")
	}

	if c.Search.MaxHotels < 1 {
		return fmt.Errorf("search.max_hotels must be positive")
	}

	if c.Search.MaxPhotos < 1 {
		return fmt.Errorf("search.max_photos must be positive")
	}

	return nil
}

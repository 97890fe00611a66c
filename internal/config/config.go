// Package config defines all configuration for the negotiation daemon.
// Config is loaded from a YAML file (default: configs/config.yaml) with
// sensitive fields overridable via NEGO_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file
// structure.
type Config struct {
	Env       string          `mapstructure:"env"`
	Store     StoreConfig     `mapstructure:"store"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	API       APIConfig       `mapstructure:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// StoreConfig points at the durable record store and the data directory
// that holds the product catalogue file (catalogue.json).
type StoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
	DataDir    string `mapstructure:"data_dir"`
}

// LLMConfig configures the OpenAI-compatible dialogue endpoint.
//
//   - BaseURL/APIKey/Model: the chat-completions endpoint the dialogue
//     adapter calls for persona rendering.
//   - Timeout: per-call deadline; the adapter's deterministic fallback
//     takes over on expiry.
type LLMConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultsConfig seeds new sessions absent a per-request override.
type DefaultsConfig struct {
	Beta               float64 `mapstructure:"beta"`
	Alpha              float64 `mapstructure:"alpha"`
	MaxRounds          int     `mapstructure:"max_rounds"`
	SessionTTLSeconds  int     `mapstructure:"session_ttl_seconds"`
	MinResponseDelayMs int     `mapstructure:"min_response_delay_ms"`
}

// RateLimitConfig caps inbound request volume and payload size per source IP.
type RateLimitConfig struct {
	MaxRequestsPerMinutePerIP int   `mapstructure:"max_requests_per_minute_per_ip"`
	MaxRequestBodyBytes       int64 `mapstructure:"max_request_body_bytes"`
}

// APIConfig controls the HTTP surface.
type APIConfig struct {
	Port               int      `mapstructure:"port"`
	AdminKey           string   `mapstructure:"admin_key"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with env var overrides.
// Sensitive fields use env vars: NEGO_LLM_API_KEY, NEGO_API_ADMIN_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("NEGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if key := os.Getenv("NEGO_LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv("NEGO_API_ADMIN_KEY"); key != "" {
		cfg.API.AdminKey = key
	}

	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	switch c.Env {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("env must be one of development, staging, production")
	}
	if c.Store.SQLitePath == "" {
		return fmt.Errorf("store.sqlite_path is required")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.Defaults.Beta <= 0 {
		return fmt.Errorf("defaults.beta must be > 0")
	}
	if c.Defaults.Alpha <= 0 || c.Defaults.Alpha > 1 {
		return fmt.Errorf("defaults.alpha must be in (0, 1]")
	}
	if c.Defaults.MaxRounds <= 0 {
		return fmt.Errorf("defaults.max_rounds must be > 0")
	}
	if c.Defaults.SessionTTLSeconds <= 0 {
		return fmt.Errorf("defaults.session_ttl_seconds must be > 0")
	}
	if c.RateLimit.MaxRequestsPerMinutePerIP <= 0 {
		return fmt.Errorf("rate_limit.max_requests_per_minute_per_ip must be > 0")
	}
	if c.RateLimit.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("rate_limit.max_request_body_bytes must be > 0")
	}
	if c.API.Port <= 0 {
		return fmt.Errorf("api.port must be > 0")
	}
	if c.API.AdminKey == "" {
		return fmt.Errorf("api.admin_key is required (set NEGO_API_ADMIN_KEY)")
	}
	return nil
}

// DefaultConfig returns the baked-in defaults matching the configuration
// table, for use when no file is supplied (e.g. tests).
func DefaultConfig() *Config {
	return &Config{
		Env: "development",
		Store: StoreConfig{
			SQLitePath: "data/negotiatord.db",
			DataDir:    "data",
		},
		LLM: LLMConfig{
			BaseURL: "http://localhost:11434/v1",
			Model:   "meta/llama-3.1-8b-instruct",
			Timeout: 30 * time.Second,
		},
		Defaults: DefaultsConfig{
			Beta:               2.0,
			Alpha:              0.5,
			MaxRounds:          10,
			SessionTTLSeconds:  900,
			MinResponseDelayMs: 2000,
		},
		RateLimit: RateLimitConfig{
			MaxRequestsPerMinutePerIP: 30,
			MaxRequestBodyBytes:       65536,
		},
		API: APIConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Package config provides configuration management for moodquote.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"moodquote/internal/domain"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Cache     CacheConfig     `toml:"cache"`
	Provider  ProviderConfig  `toml:"provider"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	HTTPPort       int           `toml:"http_port"`
	BindAddress    string        `toml:"bind_address"`
	ReadTimeout    time.Duration `toml:"read_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout"`
	MaxRequestSize int64         `toml:"max_request_size"`
}

// CacheConfig contains quote cache settings.
type CacheConfig struct {
	// TTL is how long a cached quote stays visible.
	TTL time.Duration `toml:"ttl"`
	// SweepInterval is how often expired entries are evicted.
	// Zero means sweep once per TTL.
	SweepInterval time.Duration `toml:"sweep_interval"`
}

// ProviderConfig contains generation provider settings.
type ProviderConfig struct {
	// Backend selects the provider: "gemini", "bedrock", "none", or ""
	// to auto-detect from configured credentials.
	Backend    string        `toml:"backend"`
	Timeout    time.Duration `toml:"timeout"`
	MaxRetries int           `toml:"max_retries"`

	Gemini  GeminiConfig  `toml:"gemini"`
	Bedrock BedrockConfig `toml:"bedrock"`
}

// GeminiConfig contains Gemini-specific settings.
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// BedrockConfig contains AWS Bedrock-specific settings.
type BedrockConfig struct {
	Region          string `toml:"region"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	Model           string `toml:"model"`
}

// TelemetryConfig contains telemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	LogLevel    string `toml:"log_level"`
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:       5000,
			BindAddress:    "0.0.0.0",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxRequestSize: 64 * 1024, // request bodies carry one short string
		},
		Cache: CacheConfig{
			TTL: 60 * time.Second,
		},
		Provider: ProviderConfig{
			Timeout:    15 * time.Second,
			MaxRetries: 1,
			Gemini: GeminiConfig{
				Model:   "gemini-pro",
				BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			},
			Bedrock: BedrockConfig{
				Region: "us-east-1",
				Model:  "anthropic.claude-3-haiku-20240307-v1:0",
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			ServiceName: "moodquote",
			LogLevel:    "info",
		},
	}
}

// Load loads configuration from a file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv substitutes ${VAR} patterns and applies direct environment
// variable overrides. GEMINI_API_KEY and PORT are honored for
// compatibility with existing deployments.
func (c *Config) applyEnv() {
	c.Provider.Gemini.APIKey = expandEnv(c.Provider.Gemini.APIKey)
	c.Provider.Bedrock.AccessKeyID = expandEnv(c.Provider.Bedrock.AccessKeyID)
	c.Provider.Bedrock.SecretAccessKey = expandEnv(c.Provider.Bedrock.SecretAccessKey)

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Provider.Gemini.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.HTTPPort = port
		}
	}
	if v := os.Getenv("MOODQUOTE_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.HTTPPort = port
		}
	}
	if v := os.Getenv("MOODQUOTE_PROVIDER"); v != "" {
		c.Provider.Backend = v
	}
	if v := os.Getenv("MOODQUOTE_CACHE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = ttl
		}
	}
	if v := os.Getenv("MOODQUOTE_LOG_LEVEL"); v != "" {
		c.Telemetry.LogLevel = v
	}
}

// expandEnv expands ${VAR} or $VAR patterns.
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return os.ExpandEnv(s)
}

// ResolveBackend determines which provider backend to use. An explicit
// Backend setting wins; otherwise the first backend with credentials is
// selected. Detection happens once at startup and never changes for the
// process lifetime.
func (c *Config) ResolveBackend() domain.Provider {
	if p, ok := domain.ParseProvider(c.Provider.Backend); ok && c.Provider.Backend != "" {
		return p
	}
	if c.Provider.Gemini.APIKey != "" {
		return domain.ProviderGemini
	}
	if c.Provider.Bedrock.AccessKeyID != "" && c.Provider.Bedrock.SecretAccessKey != "" {
		return domain.ProviderBedrock
	}
	return domain.ProviderNone
}

// EffectiveSweepInterval returns the sweep interval, defaulting to the
// cache TTL.
func (c *CacheConfig) EffectiveSweepInterval() time.Duration {
	if c.SweepInterval > 0 {
		return c.SweepInterval
	}
	return c.TTL
}

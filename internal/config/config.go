// Package config loads the skillapi YAML configuration by environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the skillapi server configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Cache   CacheConfig   `yaml:"cache"`
	Model   ModelConfig   `yaml:"model"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CacheConfig holds query-result cache settings. An empty addrs list
// disables caching.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache backend is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// ModelConfig selects and configures the model backend. Provider is
// "openai" (embedding-similarity classification against an
// OpenAI-compatible API) or "inference" (a dedicated inference HTTP API).
type ModelConfig struct {
	Provider  string          `yaml:"provider"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Inference InferenceConfig `yaml:"inference"`
}

// OpenAIConfig holds OpenAI-compatible provider settings.
type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// InferenceConfig holds inference API client settings.
type InferenceConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name
// (local, dev, prod), expanding ${VAR} references from the environment.
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from ENV, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "skillapi:"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Model.Provider == "" {
		c.Model.Provider = "inference"
	}
	if c.Model.Inference.TimeoutSec <= 0 {
		c.Model.Inference.TimeoutSec = 30
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Model.Provider {
	case "openai":
		if c.Model.OpenAI.Model == "" {
			return fmt.Errorf("model.openai.model is required for the openai provider")
		}
	case "inference":
		if c.Model.Inference.BaseURL == "" {
			return fmt.Errorf("model.inference.base_url is required for the inference provider")
		}
	default:
		return fmt.Errorf("model.provider must be \"openai\" or \"inference\", got %q", c.Model.Provider)
	}
	return nil
}

// findConfigPath locates the config file for the environment.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return filepath.Join(p, filename)
	}

	candidates := []string{
		filepath.Join("config", filename),
		filepath.Join("..", "config", filename),
		filepath.Join("..", "..", "config", filename),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return candidates[0]
}

var envVarRe = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnvVars substitutes ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarRe.ReplaceAllFunc(data, func(match []byte) []byte {
		name := strings.TrimSuffix(strings.TrimPrefix(string(match), "${"), "}")
		return []byte(os.Getenv(name))
	})
}

// Package config provides unified configuration loading for the lease
// analyzer. Supports YAML files, environment variables, and programmatic
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonathanvkeller/lease-analysis/internal/domain"
)

// Config holds all configuration for a processing run.
type Config struct {
	Model         string              `yaml:"model"`
	MaxCostUSD    float64             `yaml:"max_cost_usd"`
	Folders       FoldersConfig       `yaml:"folders"`
	History       HistoryConfig       `yaml:"history"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// FoldersConfig holds the working directory layout.
type FoldersConfig struct {
	Leases     string `yaml:"leases"`
	Prompts    string `yaml:"prompts"`
	Output     string `yaml:"output"`
	Exceptions string `yaml:"exceptions"`
	Logs       string `yaml:"logs"`
}

// HistoryConfig holds run-history database settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json or console
}

// Load reads configuration from an optional YAML file and applies
// environment overrides. A .env file in the working directory is loaded
// first so that credentials can live outside the config file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // ignore error if .env doesn't exist

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model:      "gpt-4o",
		MaxCostUSD: 100.0,
		Folders: FoldersConfig{
			Leases:     "data/leases",
			Prompts:    "data/prompts",
			Output:     "output",
			Exceptions: "exceptions",
			Logs:       "logs",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "data/runs.db",
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}

	if c.MaxCostUSD <= 0 {
		return fmt.Errorf("max_cost_usd must be positive, got %v", c.MaxCostUSD)
	}

	if c.Folders.Leases == "" || c.Folders.Prompts == "" {
		return fmt.Errorf("lease and prompt folders must be set")
	}

	if c.Folders.Output == "" || c.Folders.Exceptions == "" {
		return fmt.Errorf("output and exceptions folders must be set")
	}

	return nil
}

// APIKey returns the inference gateway credential. The process fails fast
// at startup if it is absent.
func (c *Config) APIKey() (string, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return "", domain.ConfigError("OPENAI_API_KEY environment variable not set", nil)
	}
	return key, nil
}

// EnsureFolders creates the working directories if they don't exist.
func (c *Config) EnsureFolders() error {
	dirs := []string{
		c.Folders.Leases,
		c.Folders.Prompts,
		c.Folders.Output,
		c.Folders.Exceptions,
		c.Folders.Logs,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.IOError(fmt.Sprintf("create folder %s", dir), err)
		}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}

	if v := os.Getenv("MAX_COST"); v != "" {
		if cost, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MaxCostUSD = cost
		}
	}

	if v := os.Getenv("LEASE_FOLDER"); v != "" {
		cfg.Folders.Leases = v
	}

	if v := os.Getenv("PROMPT_FOLDER"); v != "" {
		cfg.Folders.Prompts = v
	}

	if v := os.Getenv("OUTPUT_FOLDER"); v != "" {
		cfg.Folders.Output = v
	}

	if v := os.Getenv("EXCEPTIONS_FOLDER"); v != "" {
		cfg.Folders.Exceptions = v
	}

	if v := os.Getenv("RUN_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// Package config loads leadmesh configuration from an optional YAML file
// with environment variable overrides. Environment always wins over file
// values so deployments can tweak single knobs without editing files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration tree.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Models  ModelsConfig  `yaml:"models"`
	Session SessionConfig `yaml:"session"`
	Leadgen LeadgenConfig `yaml:"leadgen"`
	Review  ReviewConfig  `yaml:"review"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// ModelsConfig selects the model backend and the two model tiers the
// pipelines use: a stronger model for reasoning-heavy steps and a fast one
// for mechanical formatting steps.
type ModelsConfig struct {
	Provider string `yaml:"provider"` // anthropic or openai
	Advanced string `yaml:"advanced"`
	Fast     string `yaml:"fast"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	// DBPath is the SQLite database location. Empty selects the in-memory store.
	DBPath string `yaml:"db_path"`
}

// LeadgenConfig tunes the lead generation pipelines.
type LeadgenConfig struct {
	// DefaultPatternCount seeds k when the user never chose one.
	DefaultPatternCount int `yaml:"default_pattern_count"`
	// DefaultLeadCount seeds m when the user never chose one.
	DefaultLeadCount int `yaml:"default_lead_count"`
	// MaxFanOut caps how many items a single fan-out may expand into.
	MaxFanOut int `yaml:"max_fan_out"`
}

// ReviewConfig tunes the code review pipeline.
type ReviewConfig struct {
	// MaxFixAttempts bounds the fix loop iterations.
	MaxFixAttempts int `yaml:"max_fix_attempts"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Models:  ModelsConfig{Provider: "anthropic"},
		Session: SessionConfig{},
		Leadgen: LeadgenConfig{
			DefaultPatternCount: 3,
			DefaultLeadCount:    5,
			MaxFanOut:           10,
		},
		Review: ReviewConfig{MaxFixAttempts: 3},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist) and applies environment overrides on top of defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Log.Level = getEnv("LEADMESH_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LEADMESH_LOG_FORMAT", c.Log.Format)
	c.Models.Provider = getEnv("LEADMESH_MODEL_PROVIDER", c.Models.Provider)
	c.Models.Advanced = getEnv("LEADMESH_MODEL_ADVANCED", c.Models.Advanced)
	c.Models.Fast = getEnv("LEADMESH_MODEL_FAST", c.Models.Fast)
	c.Session.DBPath = getEnv("LEADMESH_DB_PATH", c.Session.DBPath)
	c.Leadgen.DefaultPatternCount = getEnvInt("LEADMESH_DEFAULT_PATTERN_COUNT", c.Leadgen.DefaultPatternCount)
	c.Leadgen.DefaultLeadCount = getEnvInt("LEADMESH_DEFAULT_LEAD_COUNT", c.Leadgen.DefaultLeadCount)
	c.Leadgen.MaxFanOut = getEnvInt("LEADMESH_MAX_FAN_OUT", c.Leadgen.MaxFanOut)
	c.Review.MaxFixAttempts = getEnvInt("LEADMESH_MAX_FIX_ATTEMPTS", c.Review.MaxFixAttempts)
}

func (c *Config) validate() error {
	switch c.Models.Provider {
	case "anthropic", "openai", "mock":
	default:
		return fmt.Errorf("unknown model provider %q", c.Models.Provider)
	}

	if c.Review.MaxFixAttempts < 1 {
		return fmt.Errorf("max_fix_attempts must be at least 1, got %d", c.Review.MaxFixAttempts)
	}
	if c.Leadgen.MaxFanOut < 1 {
		return fmt.Errorf("max_fan_out must be at least 1, got %d", c.Leadgen.MaxFanOut)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return fallback
}

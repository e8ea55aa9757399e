// Package config loads the tracker configuration from an optional yaml
// file with environment overrides on top.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/trackline/trackline/internal/engine"
)

// Config is the full runtime configuration. Yaml keys map one to one;
// every field can be overridden through its TRACKLINE_* variable.
type Config struct {
	// StorePath is the badger database directory.
	StorePath string `yaml:"store_path" env:"TRACKLINE_STORE_PATH"`

	// Verbose switches logging from info to debug.
	Verbose bool `yaml:"verbose" env:"TRACKLINE_VERBOSE"`

	Limits LimitsConfig `yaml:"limits"`
}

// LimitsConfig tunes the process-wide abuse protection.
type LimitsConfig struct {
	MaxRegistrationsPerDay int32 `yaml:"max_registrations_per_day" env:"TRACKLINE_MAX_REGISTRATIONS_PER_DAY"`
	MaxExtensionsPerDay    int32 `yaml:"max_extensions_per_day" env:"TRACKLINE_MAX_EXTENSIONS_PER_DAY"`
	TokenTTLMinutes        int64 `yaml:"token_ttl_minutes" env:"TRACKLINE_TOKEN_TTL_MINUTES"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	base := engine.NewLimits()
	return Config{
		StorePath: "trackline.db",
		Limits: LimitsConfig{
			MaxRegistrationsPerDay: base.MaxRegistrationsPerDay,
			MaxExtensionsPerDay:    base.MaxExtensionsPerDay,
			TokenTTLMinutes:        base.TokenTTLMillis / 60000,
		},
	}
}

// Load reads the yaml file at path (skipped when path is empty) and applies
// environment overrides. File values replace defaults, environment values
// replace file values.
func Load(ctx context.Context, path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("store_path must not be empty")
	}
	if c.Limits.MaxRegistrationsPerDay <= 0 {
		return fmt.Errorf("max_registrations_per_day must be positive")
	}
	if c.Limits.MaxExtensionsPerDay <= 0 {
		return fmt.Errorf("max_extensions_per_day must be positive")
	}
	if c.Limits.TokenTTLMinutes <= 0 {
		return fmt.Errorf("token_ttl_minutes must be positive")
	}
	return nil
}

// EngineLimits converts the configured caps into the engine's limiter.
func (c Config) EngineLimits() *engine.Limits {
	l := engine.NewLimits()
	l.MaxRegistrationsPerDay = c.Limits.MaxRegistrationsPerDay
	l.MaxExtensionsPerDay = c.Limits.MaxExtensionsPerDay
	l.TokenTTLMillis = c.Limits.TokenTTLMinutes * 60000
	return l
}

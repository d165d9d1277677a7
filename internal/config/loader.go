package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "PLAYERHUNT_"
	envConfigFile = envPrefix + "CONFIG"
	envDotenvFile = envPrefix + "DOTENV"
	defaultDotenv = ".env"
)

var validLogLevels = map[string]struct{}{ //nolint:gochecknoglobals // immutable lookup table
	"debug": {}, "info": {}, "warn": {}, "error": {},
}

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file: PLAYERHUNT_DOTENV, else ./.env when present. Values never
//     override variables already set in the process.
//  3. file (YAML) if PLAYERHUNT_CONFIG is set
//  4. env (prefix PLAYERHUNT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like PLAYERHUNT_RATE_LIMIT_RPS -> rate_limit_rps (flat keys).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotenv() error {
	path, explicit := os.LookupEnv(envDotenvFile)
	if !explicit || path == "" {
		path = defaultDotenv
		explicit = false
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, ok := validLogLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.ConnectTimeoutMS <= 0 || c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("%w: rate_limit_rps must not be negative", ErrInvalidConfig)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: rate_limit_burst must be at least 1", ErrInvalidConfig)
	}
	if c.LookupCacheTTLS <= 0 {
		return fmt.Errorf("%w: lookup_cache_ttl_s must be positive", ErrInvalidConfig)
	}
	if c.LookupCacheSize < 0 {
		return fmt.Errorf("%w: lookup_cache_size must not be negative", ErrInvalidConfig)
	}
	if c.ExternalLookups && c.WikidataURL == "" {
		return fmt.Errorf("%w: wikidata_url must not be empty", ErrInvalidConfig)
	}
	if err := validateThresholds("sport_thresholds", c.SportThresholds); err != nil {
		return err
	}
	return validateThresholds("country_thresholds", c.CountryThresholds)
}

func validateThresholds(name string, ts []Threshold) error {
	for i, t := range ts {
		if t.MaxPercent < 0 || t.MaxPercent > 100 {
			return fmt.Errorf("%w: %s[%d].max_percent out of range: %d", ErrInvalidConfig, name, i, t.MaxPercent)
		}
		if t.Bonus < 0 {
			return fmt.Errorf("%w: %s[%d].bonus must not be negative", ErrInvalidConfig, name, i)
		}
	}
	return nil
}

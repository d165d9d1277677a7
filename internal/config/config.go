// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults.
//   - Load layers defaults, an optional .env file, an optional YAML file and
//     PLAYERHUNT_ environment variables, in that order.
//   - Validation failures wrap ErrInvalidConfig.
package config

import "time"

// Threshold is one rarity tier: a share at or below MaxPercent earns Bonus.
type Threshold struct {
	MaxPercent int `koanf:"max_percent"`
	Bonus      int `koanf:"bonus"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// IndexPath points at the read-only sqlite athlete snapshot. A missing
	// file disables local matches.
	IndexPath string `koanf:"index_path"`

	// StorePath is the bbolt room database. Empty keeps rooms in memory.
	StorePath string `koanf:"store_path"`

	// ExternalLookups enables the Wikidata resolver.
	ExternalLookups bool `koanf:"external_lookups"`

	// WikidataURL is the Wikidata action API endpoint.
	WikidataURL string `koanf:"wikidata_url"`

	// UserAgent is sent with every Wikidata request.
	UserAgent string `koanf:"user_agent"`

	// ConnectTimeoutMS and RequestTimeoutMS bound outbound calls.
	ConnectTimeoutMS int `koanf:"connect_timeout_ms"`
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RateLimitRPS paces Wikidata requests; 0 disables pacing.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// LookupCacheTTLS is how long lookup results are reused, in seconds.
	LookupCacheTTLS int `koanf:"lookup_cache_ttl_s"`

	// LookupCacheSize bounds the lookup cache; 0 means unbounded.
	LookupCacheSize int `koanf:"lookup_cache_size"`

	// SportThresholds and CountryThresholds override the rarity tiers.
	// Empty keeps the built-in tables.
	SportThresholds   []Threshold `koanf:"sport_thresholds"`
	CountryThresholds []Threshold `koanf:"country_thresholds"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		IndexPath:        "athletes.db",
		StorePath:        "",
		ExternalLookups:  true,
		WikidataURL:      "https://www.wikidata.org/w/api.php",
		UserAgent:        "playerhunt/1.0 (https://github.com/okian/playerhunt)",
		ConnectTimeoutMS: 2000,
		RequestTimeoutMS: 5000,
		RateLimitRPS:     10,
		RateLimitBurst:   5,
		LookupCacheTTLS:  3600,
		LookupCacheSize:  10_000,
	}
}

// ConnectTimeout returns the dial timeout.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

// RequestTimeout returns the overall per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// LookupCacheTTL returns the lookup cache lifetime.
func (c *Config) LookupCacheTTL() time.Duration {
	return time.Duration(c.LookupCacheTTLS) * time.Second
}

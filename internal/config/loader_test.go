package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/playerhunt/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LookupCacheTTLS, convey.ShouldEqual, 3600)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PLAYERHUNT_ADDR", ":8080")
			_ = os.Setenv("PLAYERHUNT_RATE_LIMIT_RPS", "2.5")
			_ = os.Setenv("PLAYERHUNT_LOOKUP_CACHE_SIZE", "50")
			_ = os.Setenv("PLAYERHUNT_EXTERNAL_LOOKUPS", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.LookupCacheSize, convey.ShouldEqual, 50)
				convey.So(cfg.ExternalLookups, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
index_path: /data/athletes.db
store_path: /data/rooms.db
connect_timeout_ms: 1000
sport_thresholds:
  - max_percent: 10
    bonus: 5
country_thresholds:
  - max_percent: 1
    bonus: 3
`)
			_ = os.Setenv("PLAYERHUNT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.IndexPath, convey.ShouldEqual, "/data/athletes.db")
				convey.So(cfg.StorePath, convey.ShouldEqual, "/data/rooms.db")
				convey.So(cfg.ConnectTimeoutMS, convey.ShouldEqual, 1000)
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 5000)
				convey.So(cfg.SportThresholds, convey.ShouldResemble, []config.Threshold{{MaxPercent: 10, Bonus: 5}})
				convey.So(cfg.CountryThresholds, convey.ShouldResemble, []config.Threshold{{MaxPercent: 1, Bonus: 3}})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
log_level: debug
`)
			_ = os.Setenv("PLAYERHUNT_CONFIG", tmpFile)
			_ = os.Setenv("PLAYERHUNT_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When a dotenv file is configured", func() {
			dir := t.TempDir()
			dotenv := filepath.Join(dir, "test.env")
			convey.So(os.WriteFile(dotenv, []byte("PLAYERHUNT_ADDR=:7070\nPLAYERHUNT_USER_AGENT=dotenv-agent\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("PLAYERHUNT_DOTENV", dotenv)
			_ = os.Setenv("PLAYERHUNT_USER_AGENT", "process-agent")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values apply without overriding the process env", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.UserAgent, convey.ShouldEqual, "process-agent")
			})
		})

		convey.Convey("When the configured dotenv file is missing", func() {
			_ = os.Setenv("PLAYERHUNT_DOTENV", "/non/existent/.env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("PLAYERHUNT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PLAYERHUNT_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("PLAYERHUNT_RATE_LIMIT_BURST", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with out-of-range values", func() {
			cases := []struct {
				key, value, message string
			}{
				{"PLAYERHUNT_LOG_LEVEL", "verbose", "unknown log_level"},
				{"PLAYERHUNT_REQUEST_TIMEOUT_MS", "0", "timeouts must be positive"},
				{"PLAYERHUNT_RATE_LIMIT_RPS", "-1", "rate_limit_rps"},
				{"PLAYERHUNT_RATE_LIMIT_BURST", "0", "rate_limit_burst"},
				{"PLAYERHUNT_LOOKUP_CACHE_TTL_S", "0", "lookup_cache_ttl_s"},
				{"PLAYERHUNT_LOOKUP_CACHE_SIZE", "-5", "lookup_cache_size"},
			}
			for _, tc := range cases {
				convey.Convey("And "+tc.key+"="+tc.value, func() {
					_ = os.Setenv(tc.key, tc.value)
					defer clearConfigEnvVars()

					cfg, err := config.Load(ctx)

					convey.Convey("Then it should return a validation error", func() {
						convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
						convey.So(err.Error(), convey.ShouldContainSubstring, tc.message)
						convey.So(cfg, convey.ShouldBeNil)
					})
				})
			}
		})

		convey.Convey("When a threshold is out of range", func() {
			tmpFile := createTempConfigFile(t, `
sport_thresholds:
  - max_percent: 120
    bonus: 1
`)
			_ = os.Setenv("PLAYERHUNT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "sport_thresholds[0]")
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			tmpFile := createTempConfigFile(t, `addr: ""`)
			_ = os.Setenv("PLAYERHUNT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "PLAYERHUNT_") {
			_ = os.Unsetenv(key)
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playerhunt-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

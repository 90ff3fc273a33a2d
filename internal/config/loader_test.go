package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/podium/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9091")
				convey.So(cfg.CachePath, convey.ShouldEqual, "podium-cache.db")
				convey.So(cfg.OutboxPath, convey.ShouldEqual, "podium-outbox.db")
				convey.So(cfg.SyncIntervalSeconds, convey.ShouldEqual, 30)
				convey.So(cfg.PingIntervalSeconds, convey.ShouldEqual, 10)
				convey.So(cfg.ScoringScheme, convey.ShouldEqual, "podium")
				convey.So(len(cfg.DriverRoster), convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PODIUM_DATABASE_DSN", "postgres://u:p@db:5432/x")
			_ = os.Setenv("PODIUM_CACHE_PATH", "/tmp/mirror.db")
			_ = os.Setenv("PODIUM_SYNC_INTERVAL_SECONDS", "5")
			_ = os.Setenv("PODIUM_DEBUG", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.DatabaseDSN, convey.ShouldEqual, "postgres://u:p@db:5432/x")
				convey.So(cfg.CachePath, convey.ShouldEqual, "/tmp/mirror.db")
				convey.So(cfg.SyncIntervalSeconds, convey.ShouldEqual, 5)
				convey.So(cfg.Debug, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
log_level: debug
metrics_addr: ":9999"
cache_path: /var/lib/podium/mirror.db
outbox_path: /var/lib/podium/outbox.db
scoring_scheme: legacy
driver_roster:
  - VER
  - HAM
  - LEC
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9999")
				convey.So(cfg.CachePath, convey.ShouldEqual, "/var/lib/podium/mirror.db")
				convey.So(cfg.ScoringScheme, convey.ShouldEqual, "legacy")
				convey.So(cfg.DriverRoster, convey.ShouldResemble, []string{"VER", "HAM", "LEC"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
metrics_addr: ":9999"
cache_path: /var/lib/podium/mirror.db
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			_ = os.Setenv("PODIUM_METRICS_ADDR", ":8088") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":8088")                  // Overridden by env
				convey.So(cfg.CachePath, convey.ShouldEqual, "/var/lib/podium/mirror.db") // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PODIUM_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty database DSN", func() {
			_ = os.Setenv("PODIUM_DATABASE_DSN", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "database_dsn")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown scoring scheme", func() {
			_ = os.Setenv("PODIUM_SCORING_SCHEME", "bonus-round")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "scoring_scheme")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive interval", func() {
			_ = os.Setenv("PODIUM_PING_INTERVAL_SECONDS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "intervals")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
log_level: warn
token_ttl_hours: 12
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")       // From file
				convey.So(cfg.TokenTTLHours, convey.ShouldEqual, 12)      // From file
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9091")   // From defaults
				convey.So(cfg.ScoringScheme, convey.ShouldEqual, "podium") // From defaults
			})
		})
	})
}

func TestConfigDurations(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When converting interval fields to durations", func() {
			convey.Convey("Then they should match the configured seconds and hours", func() {
				convey.So(cfg.SyncInterval().Seconds(), convey.ShouldEqual, 30)
				convey.So(cfg.PingInterval().Seconds(), convey.ShouldEqual, 10)
				convey.So(cfg.TokenTTL().Hours(), convey.ShouldEqual, 72)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"PODIUM_CONFIG",
		"PODIUM_LOG_LEVEL",
		"PODIUM_METRICS_ADDR",
		"PODIUM_DATABASE_DSN",
		"PODIUM_CACHE_PATH",
		"PODIUM_OUTBOX_PATH",
		"PODIUM_SYNC_INTERVAL_SECONDS",
		"PODIUM_PING_INTERVAL_SECONDS",
		"PODIUM_SCORING_SCHEME",
		"PODIUM_JWT_SECRET",
		"PODIUM_TOKEN_TTL_HOURS",
		"PODIUM_DEBUG",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "podium-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}

package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if PODIUM_CONFIG is set
//  3. env (prefix PODIUM_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PODIUM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PODIUM_DATABASE_DSN, PODIUM_CACHE_PATH, ...
	// Map env keys like PODIUM_CACHE_PATH -> cache_path (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PODIUM_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "podium_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("%w: database_dsn must not be empty", ErrInvalidConfig)
	}
	if cfg.CachePath == "" {
		return fmt.Errorf("%w: cache_path must not be empty", ErrInvalidConfig)
	}
	if cfg.OutboxPath == "" {
		return fmt.Errorf("%w: outbox_path must not be empty", ErrInvalidConfig)
	}
	if len(cfg.DriverRoster) == 0 {
		return fmt.Errorf("%w: driver_roster must not be empty", ErrInvalidConfig)
	}
	switch cfg.ScoringScheme {
	case "podium", "legacy":
	default:
		return fmt.Errorf("%w: unknown scoring_scheme %q", ErrInvalidConfig, cfg.ScoringScheme)
	}
	if cfg.SyncIntervalSeconds <= 0 || cfg.PingIntervalSeconds <= 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	}
	return nil
}

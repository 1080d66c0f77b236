package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/user/tagging-fight-cli/annotate"
)

// EnvPrefix prefixes every environment override, e.g. FIGHTTAG_DB_DSN.
const EnvPrefix = "FIGHTTAG_"

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Load builds a Config by layering, low to high:
//  1. defaults (New)
//  2. YAML file at path, or at $FIGHTTAG_CONFIG when path is empty
//  3. env vars with prefix FIGHTTAG_
func Load(_ context.Context, path string) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// FIGHTTAG_SAVE_TIMEOUT_SECONDS -> save_timeout_seconds (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: db_driver must be sqlite or postgres, got %q", ErrInvalidConfig, c.DBDriver)
	}
	switch c.Backend {
	case "sql":
	case "rest":
		if c.RestURL == "" {
			return fmt.Errorf("%w: rest_url is required when backend is rest", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: backend must be sql or rest, got %q", ErrInvalidConfig, c.Backend)
	}
	if _, err := annotate.ParseOwner(c.DefaultOwner); err != nil {
		return fmt.Errorf("%w: default_owner: %v", ErrInvalidConfig, err)
	}
	if c.BucketSeconds <= 0 {
		return fmt.Errorf("%w: bucket_seconds must be positive", ErrInvalidConfig)
	}
	if c.SaveTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: save_timeout_seconds must be positive", ErrInvalidConfig)
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Owner returns the parsed default owner policy.
func (c *Config) Owner() annotate.Owner {
	o, err := annotate.ParseOwner(c.DefaultOwner)
	if err != nil {
		return annotate.OwnerAthlete
	}
	return o
}

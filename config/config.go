// Package config defines the CLI and API configuration and how it is loaded.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is json or console.
	LogFormat string `koanf:"log_format"`

	// DBDriver is sqlite or postgres.
	DBDriver string `koanf:"db_driver"`
	// DBDSN is a file path for sqlite or a connection string for postgres.
	DBDSN string `koanf:"db_dsn"`

	// Backend selects where saves go: sql (DBDriver/DBDSN) or rest (RestURL).
	Backend    string `koanf:"backend"`
	RestURL    string `koanf:"rest_url"`
	RestAPIKey string `koanf:"rest_api_key"`

	// MPVSocket is the JSON IPC socket of the player.
	MPVSocket string `koanf:"mpv_socket"`
	// DraftsDir holds unsaved sessions between invocations.
	DraftsDir string `koanf:"drafts_dir"`

	// BucketSeconds is the timeline chart bucket width.
	BucketSeconds float64 `koanf:"bucket_seconds"`
	// DefaultOwner is who gets strikes outside every action: athlete, opponent or unassigned.
	DefaultOwner string `koanf:"default_owner"`
	// SaveTimeoutSeconds bounds the whole insert batch.
	SaveTimeoutSeconds int `koanf:"save_timeout_seconds"`

	// Addr is the API listen address.
	Addr string `koanf:"addr"`
	// RedisAddr enables the report cache when set.
	RedisAddr       string `koanf:"redis_addr"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`

	// Coach scopes the strike taxonomy.
	Coach string `koanf:"coach"`
}

// New returns a Config with defaults.
func New() *Config {
	dataDir := defaultDataDir()
	return &Config{
		LogLevel:           "info",
		LogFormat:          "console",
		DBDriver:           "sqlite",
		DBDSN:              filepath.Join(dataDir, "data.db"),
		Backend:            "sql",
		MPVSocket:          "/tmp/tagging-fight-mpv.sock",
		DraftsDir:          filepath.Join(dataDir, "drafts"),
		BucketSeconds:      30,
		DefaultOwner:       "athlete",
		SaveTimeoutSeconds: 30,
		Addr:               ":8088",
		CacheTTLSeconds:    300,
		Coach:              "default",
	}
}

// SaveTimeout returns SaveTimeoutSeconds as a duration.
func (c *Config) SaveTimeout() time.Duration {
	return time.Duration(c.SaveTimeoutSeconds) * time.Second
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tagging-fight-cli")
	}
	return filepath.Join(home, ".local", "share", "tagging-fight-cli")
}

// Package config loads runtime options from the environment. User-facing
// provider credentials live in the settings store, not here; these knobs
// cover paths, logging and poll tuning.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is populated from CAMEO_* environment variables.
type Config struct {
	// DataDir holds the key-value store and saved media. Defaults to
	// ~/.cameo when unset.
	DataDir string `env:"CAMEO_DATA_DIR"`

	// LogLevel selects the zerolog level: debug, info, warn, error.
	LogLevel string `env:"CAMEO_LOG_LEVEL" envDefault:"info"`

	// StorageQuotaBytes caps a single persisted value; 0 disables the cap.
	StorageQuotaBytes int64 `env:"CAMEO_STORAGE_QUOTA_BYTES" envDefault:"0"`

	// PollInterval and PollAttempts tune the video status loop.
	PollInterval time.Duration `env:"CAMEO_POLL_INTERVAL" envDefault:"5s"`
	PollAttempts int           `env:"CAMEO_POLL_ATTEMPTS" envDefault:"120"`
}

// Load reads the environment and fills in defaults that need the host
// (the home directory).
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".cameo")
	}
	return &cfg, nil
}

// MediaDir is where fetched video content is written.
func (c *Config) MediaDir() string {
	return filepath.Join(c.DataDir, "media")
}

// StoreDir is where the key-value store keeps its files.
func (c *Config) StoreDir() string {
	return filepath.Join(c.DataDir, "store")
}

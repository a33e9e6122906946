// Package container wires the billing engine's dependencies and owns their
// lifecycle: ordered initialization on Start and reverse-order teardown on Close.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Rating   RatingConfig
	Worker   WorkerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// BusyTimeout is how long a writer waits for the database lock
	BusyTimeout time.Duration

	// AutoMigrate applies the embedded migrations on start
	AutoMigrate bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Mode         string
}

// RatingConfig holds rating engine settings.
type RatingConfig struct {
	// SnapshotCacheTTL is how long a built configuration snapshot is reused
	SnapshotCacheTTL time.Duration

	// BulkConcurrency bounds parallel rating in bulk runs
	BulkConcurrency int
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	ConfigAuditEnabled  bool
	ConfigAuditInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/billing.db",
			MaxOpenConns:    8,
			MaxIdleConns:    4,
			ConnMaxLifetime: 5 * time.Minute,
			BusyTimeout:     5 * time.Second,
			AutoMigrate:     true,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			Mode:         "release",
		},
		Rating: RatingConfig{
			SnapshotCacheTTL: time.Minute,
			BulkConcurrency:  8,
		},
		Worker: WorkerConfig{
			ConfigAuditEnabled:  true,
			ConfigAuditInterval: 15 * time.Minute,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Rating.BulkConcurrency <= 0 {
		return fmt.Errorf("rating.bulk_concurrency must be positive")
	}
	if c.Rating.SnapshotCacheTTL < 0 {
		return fmt.Errorf("rating.snapshot_cache_ttl must not be negative")
	}
	if c.Worker.ConfigAuditEnabled && c.Worker.ConfigAuditInterval <= 0 {
		return fmt.Errorf("worker.config_audit_interval must be positive")
	}
	return nil
}

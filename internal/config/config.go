package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Rating   RatingConfig   `mapstructure:"rating"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Mode         string        `mapstructure:"mode"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// RatingConfig holds rating engine configuration
type RatingConfig struct {
	SnapshotCacheTTL time.Duration `mapstructure:"snapshot_cache_ttl"`
	BulkConcurrency  int           `mapstructure:"bulk_concurrency"`
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	ConfigAuditEnabled  bool          `mapstructure:"config_audit_enabled"`
	ConfigAuditInterval time.Duration `mapstructure:"config_audit_interval"`
}

// Load reads configuration from configPath, then applies variables from an
// optional .env file at envPath and the process environment. An empty
// envPath skips the .env file.
func Load(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		if err := gotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.path", "data/billing.db")
	v.SetDefault("database.max_open_conns", 8)
	v.SetDefault("database.max_idle_conns", 4)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.busy_timeout", 5*time.Second)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	v.SetDefault("rating.snapshot_cache_ttl", time.Minute)
	v.SetDefault("rating.bulk_concurrency", 8)

	v.SetDefault("worker.config_audit_enabled", true)
	v.SetDefault("worker.config_audit_interval", 15*time.Minute)
}

var envBindings = map[string]string{
	"server.host":                  "BILLING_SERVER_HOST",
	"server.port":                  "BILLING_SERVER_PORT",
	"server.mode":                  "BILLING_SERVER_MODE",
	"database.path":                "BILLING_DB_PATH",
	"database.auto_migrate":        "BILLING_DB_AUTO_MIGRATE",
	"logger.level":                 "BILLING_LOG_LEVEL",
	"logger.format":                "BILLING_LOG_FORMAT",
	"rating.snapshot_cache_ttl":    "BILLING_SNAPSHOT_CACHE_TTL",
	"rating.bulk_concurrency":      "BILLING_BULK_CONCURRENCY",
	"worker.config_audit_enabled":  "BILLING_CONFIG_AUDIT_ENABLED",
	"worker.config_audit_interval": "BILLING_CONFIG_AUDIT_INTERVAL",
}

func bindEnvVars(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test")
	}
	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console")
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

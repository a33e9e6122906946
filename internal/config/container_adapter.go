package config

import (
	"github.com/garyjia/courier-billing/internal/container"
	"github.com/garyjia/courier-billing/pkg/utils"
)

// ToContainerConfig converts the file-based configuration to the
// container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			BusyTimeout:     c.Database.BusyTimeout,
			AutoMigrate:     c.Database.AutoMigrate,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
			Mode:         c.Server.Mode,
		},
		Rating: container.RatingConfig{
			SnapshotCacheTTL: c.Rating.SnapshotCacheTTL,
			BulkConcurrency:  c.Rating.BulkConcurrency,
		},
		Worker: container.WorkerConfig{
			ConfigAuditEnabled:  c.Worker.ConfigAuditEnabled,
			ConfigAuditInterval: c.Worker.ConfigAuditInterval,
		},
	}
}

// ToLoggerConfig converts the logger section for utils.NewLogger
func (c *Config) ToLoggerConfig() utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
	}
}

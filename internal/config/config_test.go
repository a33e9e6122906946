package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9090
database:
  path: /tmp/test-billing.db
rating:
  snapshot_cache_ttl: 30s
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "/tmp/test-billing.db", cfg.Database.Path)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 30*time.Second, cfg.Rating.SnapshotCacheTTL)
	assert.Equal(t, 8, cfg.Rating.BulkConcurrency)
	assert.Equal(t, 15*time.Minute, cfg.Worker.ConfigAuditInterval)

	cc := cfg.ToContainerConfig()
	assert.Equal(t, cfg.Database.Path, cc.Database.Path)
	assert.Equal(t, 30*time.Second, cc.Rating.SnapshotCacheTTL)
	require.NoError(t, cc.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "server:\n  port: 9090\n")

	t.Setenv("BILLING_SERVER_PORT", "7070")
	t.Setenv("BILLING_BULK_CONCURRENCY", "3")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Rating.BulkConcurrency)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "logger:\n  level: info\n")
	envPath := writeFile(t, dir, ".env", "BILLING_LOG_LEVEL=debug\n")
	t.Cleanup(func() {
		os.Unsetenv("BILLING_LOG_LEVEL")
	})

	cfg, err := Load(path, envPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)

	_, err = Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"), "")
	assert.Error(t, err)

	path := writeFile(t, dir, "bad.yaml", "rating:\n  bulk_concurrency: 0\n")
	_, err = Load(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bulk_concurrency")

	path = writeFile(t, dir, "mode.yaml", "server:\n  mode: verbose\n")
	_, err = Load(path, "")
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/layman/connector"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layman.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: pgx
  host: db.local
  port: 5432
  database: shop
  username: app
  ssl_mode: disable
  params:
    application_name: layman
  pool:
    max_open: 20
    max_lifetime: 30m
  retry:
    max_retries: 3
    base_delay: 250ms
  statement_cache: 64
logging:
  level: debug
metrics:
  enabled: true
`)
	t.Setenv("LAYMAN_DATABASE_PASSWORD", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	db := cfg.Database
	assert.Equal(t, "pgx", db.Driver)
	assert.Equal(t, "db.local", db.Host)
	assert.Equal(t, 5432, db.Port)
	assert.Equal(t, "from-env", db.Password)
	assert.Equal(t, map[string]string{"application_name": "layman"}, db.Params)
	assert.Equal(t, connector.PoolConfig{MaxOpen: 20, MaxLifetime: 30 * time.Minute}, db.Pool)
	require.NotNil(t, db.Retry)
	assert.Equal(t, 3, db.Retry.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, db.Retry.BaseDelay)
	assert.Equal(t, 64, db.StatementCache)
	assert.Equal(t, 10*time.Second, db.ConnectTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("LAYMAN_DATABASE_DRIVER", "sqlite")
	t.Setenv("LAYMAN_DATABASE_DATABASE", "app.db")
	t.Setenv("LAYMAN_DATABASE_CONNECT_TIMEOUT", "2s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "app.db", cfg.Database.Database)
	assert.Equal(t, 2*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Nil(t, cfg.Database.Retry)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "logging:\n  level: loud\n"))
	assert.ErrorContains(t, err, "logging.level")

	_, err = Load(writeConfig(t, "database:\n  driver: mysql\n"))
	assert.ErrorIs(t, err, connector.ErrInvalidConfig)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
verification:
  variant: fixed
  pollInterval: 1s
database:
  enabled: true
  host: db
`), 0o600))

	t.Setenv("APP_DATABASE_HOST", "db.internal")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "fixed", cfg.Verification.Variant)
	assert.Equal(t, time.Second, cfg.Verification.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Verification.MinDelay)
	assert.Equal(t, 168*time.Hour, cfg.Session.IdleTTL)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "student", cfg.DefaultRole)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
}

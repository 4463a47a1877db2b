package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Host)
	assert.Zero(t, cfg.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nadctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: 192.168.1.40
port: 50001
query_timeout: 3s
log:
  level: debug
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.40", cfg.Host)
	assert.Equal(t, 50001, cfg.Port)
	assert.Equal(t, 3*time.Second, time.Duration(cfg.QueryTimeout))
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched fields keep their defaults.
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("host: [unterminated"), 0o644))
	_, err = loadConfig(bad)
	assert.Error(t, err)
}

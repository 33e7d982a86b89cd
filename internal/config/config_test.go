package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: "local"
db:
  driver: "sqlite"
  sqlite_path: "/tmp/budget.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "localhost:4001", cfg.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TemplateTTL)
	assert.Equal(t, "BRL", cfg.Defaults.Currency)

	tax, margin, err := cfg.Defaults.Rates()
	require.NoError(t, err)
	assert.Equal(t, "0.18", tax.String())
	assert.Equal(t, "0.3", margin.String())
}

func TestLoad_RejectsBadRates(t *testing.T) {
	path := writeConfig(t, `
defaults:
  tax_rate: "dezoito"
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "defaults.tax_rate")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/etc/budget/prod.yaml")
	assert.Equal(t, "/etc/budget/prod.yaml", Path())

	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, defaultPath, Path())
}

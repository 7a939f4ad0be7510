package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "leads.db", cfg.Store.SQLitePath)
	assert.Equal(t, int32(10), cfg.Store.Pool.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.Pool.MinConns)
	assert.Equal(t, "visao_empresa_agrupada_base", cfg.Query.View)
	assert.Equal(t, 0, cfg.Query.Limit)
	assert.InDelta(t, 0.10, cfg.Pricing.PerCompany, 0.001)
	assert.InDelta(t, 0.03, cfg.Pricing.PerDistrict, 0.001)
	assert.InDelta(t, 0.07, cfg.Pricing.PerCity, 0.001)
	assert.InDelta(t, 0.05, cfg.Pricing.PerEnriched, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
store:
  driver: sqlite
  sqlite_path: /tmp/test-leads.db
query:
  view: visao_empresa_completa
  limit: 5000
pricing:
  per_company: 0.25
log:
  level: debug
  format: console
server:
  port: 9000
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/test-leads.db", cfg.Store.SQLitePath)
	assert.Equal(t, "visao_empresa_completa", cfg.Query.View)
	assert.Equal(t, 5000, cfg.Query.Limit)
	assert.InDelta(t, 0.25, cfg.Pricing.PerCompany, 0.001)
	// Untouched keys keep their defaults.
	assert.InDelta(t, 0.03, cfg.Pricing.PerDistrict, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("LEADGEN_STORE_DRIVER", "sqlite")
	t.Setenv("LEADGEN_QUERY_LIMIT", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 100, cfg.Query.Limit)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level"})
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "ensalamento", cfg.Database.DBName)
	assert.Equal(t, 4, cfg.Allocation.ScoringWorkers)
	assert.Equal(t, 366, cfg.Reservation.MaxHorizonDays)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
allocation:
  scoring_workers: 8
reservation:
  max_horizon_days: 90
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Allocation.ScoringWorkers)
	assert.Equal(t, 90, cfg.Reservation.MaxHorizonDays)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
allocation:
  scoring_workers: 8
`)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("ALLOCATION_SCORING_WORKERS", "2")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 2, cfg.Allocation.ScoringWorkers)
}

func TestLoadConfigRejectsMalformedEnvInt(t *testing.T) {
	t.Setenv("ALLOCATION_SCORING_WORKERS", "many")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOCATION_SCORING_WORKERS")
}

func TestLoadConfigValidatesWorkerCount(t *testing.T) {
	path := writeConfigFile(t, `
allocation:
  scoring_workers: 0
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring workers")
}

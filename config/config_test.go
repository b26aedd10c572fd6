package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so no stray config.yaml or .env is picked up.
func chdir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 200, cfg.ERP.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.ERP.CacheTTL)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.CleanupCron)
	assert.EqualValues(t, 10<<20, cfg.Upload.MaxSizeBytes)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("ERP_BASE_URL", "http://erp.local")
	t.Setenv("ERP_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "http://erp.local", cfg.ERP.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.ERP.Timeout)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfig points the loader at a nonexistent config file so tests are
// not affected by a config.yaml in the working directory.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("FSQ_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(33554432), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 180, cfg.Data.DemoDays)
	assert.Equal(t, int64(42), cfg.Data.DemoSeed)
	assert.Equal(t, 90, cfg.Forecast.HorizonDays)
	assert.Equal(t, 30*time.Second, cfg.Forecast.FitTimeout)
	assert.Equal(t, 3, cfg.Forecast.FourierOrder)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateConfig(t)
	t.Setenv("FSQ_SERVER_PORT", "9091")
	t.Setenv("FSQ_DATA_DEMO_DAYS", "365")
	t.Setenv("FSQ_FORECAST_HORIZON_DAYS", "30")
	t.Setenv("FSQ_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.Server.Port)
	assert.Equal(t, 365, cfg.Data.DemoDays)
	assert.Equal(t, 30, cfg.Forecast.HorizonDays)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  demo_seed: 7\n"), 0644))
	t.Setenv("FSQ_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Data.DemoSeed)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0644))
	t.Setenv("FSQ_CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"port too low", "FSQ_SERVER_PORT", "0", "invalid server port"},
		{"port too high", "FSQ_SERVER_PORT", "70000", "invalid server port"},
		{"demo days", "FSQ_DATA_DEMO_DAYS", "-1", "demo_days must be positive"},
		{"horizon", "FSQ_FORECAST_HORIZON_DAYS", "0", "horizon_days must be positive"},
		{"fourier order", "FSQ_FORECAST_FOURIER_ORDER", "0", "fourier_order must be at least 1"},
		{"logging output", "FSQ_LOGGING_OUTPUT", "syslog", "invalid logging output mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

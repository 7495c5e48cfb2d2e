package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "tracker", cfg.OutputDir)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, 10*time.Minute, cfg.JobTimeout)
	assert.Equal(t, DefaultReadmeFolderID, cfg.Drive.ReadmeFolderID)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "8089", cfg.Port)
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("WORKERS", "3")
	t.Setenv("JOB_TIMEOUT", "90s")
	t.Setenv("DRIVE_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 90*time.Second, cfg.JobTimeout)
	assert.InDelta(t, 2.5, cfg.Drive.RequestsPerSecond, 1e-9)
	assert.True(t, cfg.Redis.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"invalid env", map[string]string{"ENV": "invalid"}},
		{"negative workers", map[string]string{"WORKERS": "-1"}},
		{"zero timeout", map[string]string{"JOB_TIMEOUT": "0s"}},
		{"negative rate", map[string]string{"DRIVE_REQUESTS_PER_SECOND": "-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	t.Setenv("TEST_INT", "100")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_FLOAT", "oops")

	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
	assert.InDelta(t, 1.5, getEnvAsFloat("TEST_FLOAT", 1.5), 1e-9)
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_MISSING", "1h"))
}

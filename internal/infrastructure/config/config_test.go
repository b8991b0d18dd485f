package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "output", cfg.Compiler.OutputDir)
	assert.Equal(t, "resources", cfg.Compiler.ResourcesDir)
	assert.Equal(t, 60.0, cfg.Compiler.StopTime)
	assert.Equal(t, 2.0, cfg.Compiler.DensityFactor)
	assert.Empty(t, cfg.Compiler.KnowledgeFile)

	assert.Empty(t, cfg.Placement.URL)
	assert.Equal(t, 10*time.Second, cfg.Placement.Timeout)
	assert.Equal(t, 3, cfg.Placement.Retries)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 20, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                   "9000",
		"HOST":                   "127.0.0.1",
		"OUTPUT_DIR":             "/tmp/scenarios",
		"ESMINI_RESOURCES":       "/opt/esmini/resources",
		"STOP_TIME":              "120",
		"TRAFFIC_DENSITY_FACTOR": "3.5",
		"KNOWLEDGE_FILE":         "maps.toml",
		"PLACEMENT_URL":          "http://placement:9000",
		"PLACEMENT_TIMEOUT":      "2s",
		"PLACEMENT_RETRIES":      "1",
		"LOG_LEVEL":              "debug",
		"LOG_DEV":                "true",
		"RATE_LIMIT_RPS":         "500",
		"RATE_LIMIT_BURST":       "1000",
		"RATE_LIMIT_ENABLED":     "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "/tmp/scenarios", cfg.Compiler.OutputDir)
	assert.Equal(t, "/opt/esmini/resources", cfg.Compiler.ResourcesDir)
	assert.Equal(t, 120.0, cfg.Compiler.StopTime)
	assert.Equal(t, 3.5, cfg.Compiler.DensityFactor)
	assert.Equal(t, "maps.toml", cfg.Compiler.KnowledgeFile)
	assert.Equal(t, "http://placement:9000", cfg.Placement.URL)
	assert.Equal(t, 2*time.Second, cfg.Placement.Timeout)
	assert.Equal(t, 1, cfg.Placement.Retries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparseable float", "STOP_TIME", "soon"},
		{"negative stop time", "STOP_TIME", "-1"},
		{"zero density", "TRAFFIC_DENSITY_FACTOR", "0"},
		{"negative retries", "PLACEMENT_RETRIES", "-2"},
		{"bad duration", "PLACEMENT_TIMEOUT", "ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)

			cfg := LoadOrDefault()
			assert.Equal(t, Default(), cfg)
		})
	}
}

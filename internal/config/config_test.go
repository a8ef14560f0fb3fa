package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DRESSI_API_BASE_URL", "DRESSI_STORE_DIR", "DRESSI_IMAGE_CACHE_DIR", "DRESSI_PORT", "DRESSI_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, 20, cfg.Swipe.Capacity)
	assert.Equal(t, 4, cfg.Swipe.Placeholders)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "dressi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: https://api.example.com\nswipe:\n  capacity: 10\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 10, cfg.Swipe.Capacity)
	assert.Equal(t, 4, cfg.Swipe.Placeholders)
	assert.Equal(t, "8888", cfg.Port)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "swipe: [unterminated"},
		{"zero capacity", "swipe:\n  capacity: 0\n"},
		{"too many placeholders", "swipe:\n  capacity: 3\n  placeholders: 4\n"},
		{"non-numeric port", "port: http"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Run("apply without a file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DRESSI_API_BASE_URL", "https://env.example.com")
		t.Setenv("DRESSI_PORT", "9000")

		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.com", cfg.APIBaseURL)
		assert.Equal(t, "9000", cfg.Port)
	})

	t.Run("win over the file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DRESSI_STORE_DIR", "/tmp/env-store")
		path := filepath.Join(t.TempDir(), "dressi.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store_dir: /tmp/file-store\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/env-store", cfg.StoreDir)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "dressi.yaml")

	cfg := DefaultConfig()
	cfg.Swipe.UseWeather = false
	cfg.LogLevel = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestQueueOptions(t *testing.T) {
	opts := SwipeConfig{Capacity: 8, Placeholders: 2}.QueueOptions()
	assert.Equal(t, 8, opts.Capacity)
	assert.Equal(t, 2, opts.Placeholders)
	assert.Nil(t, opts.OnExhausted)
}

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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendURL, cfg.Backend.URL)
	assert.Equal(t, 20*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 6, cfg.UI.GridColumns)
	assert.Equal(t, "trending", cfg.UI.HomeCategory)
	assert.Equal(t, 24, cfg.UI.HomeLimit)
	assert.Equal(t, 12, cfg.Backend.TFIDFTopN)
	assert.Equal(t, 12, cfg.Backend.GenreLimit)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: http://localhost:9000/
  timeout: 5s
cache:
  ttl: 2m
ui:
  grid_columns: 8
  home_category: popular
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Backend.URL, "trailing slash is trimmed")
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 8, cfg.UI.GridColumns)
	assert.Equal(t, "popular", cfg.UI.HomeCategory)
}

func TestLoadConfig_DefaultCachePath(t *testing.T) {
	path := writeConfig(t, `
cache:
  path: default
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultCachePath(), cfg.Cache.Path)
	assert.Equal(t, "cache.db", filepath.Base(cfg.Cache.Path))

	path = writeConfig(t, `
cache:
  path: /tmp/marquee-test.db
`)
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/marquee-test.db", cfg.Cache.Path, "explicit paths are kept")
}

func TestLoadConfig_APIBaseEnv(t *testing.T) {
	t.Setenv("API_BASE", "http://backend.internal:8000")
	path := writeConfig(t, "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://backend.internal:8000", cfg.Backend.URL)
}

func TestLoadConfig_PrefixedEnvWins(t *testing.T) {
	t.Setenv("API_BASE", "http://legacy:8000")
	t.Setenv("MARQUEE_BACKEND_URL", "http://primary:8000")
	t.Setenv("MARQUEE_UI_GRID_COLUMNS", "4")
	path := writeConfig(t, "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://primary:8000", cfg.Backend.URL)
	assert.Equal(t, 4, cfg.UI.GridColumns)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"too few columns", func(c *Config) { c.UI.GridColumns = 3 }, "UI.GridColumns"},
		{"too many columns", func(c *Config) { c.UI.GridColumns = 9 }, "UI.GridColumns"},
		{"bad url", func(c *Config) { c.Backend.URL = "not a url" }, "Backend.URL"},
		{"zero timeout", func(c *Config) { c.Backend.Timeout = 0 }, "Backend.Timeout"},
		{"bad level", func(c *Config) { c.Logging.Level = "LOUD" }, "Logging.Level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

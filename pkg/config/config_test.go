package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
telegram_token: tg-token
hotels_api_key: api-key
search:
  max_hotels: 15
runtime:
  observability_port: 9999
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "tg-token", cfg.TelegramToken)
	assert.Equal(t, "api-key", cfg.HotelsAPIKey)
	assert.Equal(t, 15, cfg.Search.MaxHotels)
	assert.Equal(t, 9999, cfg.Runtime.ObservabilityPort)

	// Unset fields fall back to defaults.
	assert.Equal(t, "hotels4.p.rapidapi.com", cfg.HotelsAPIHost)
	assert.Equal(t, 5, cfg.Search.MaxPhotos)
	assert.Equal(t, 200, cfg.Search.PageSize)
	assert.Equal(t, 10, cfg.Runtime.LongPollTimeout)
}

func TestDefaultEnablesMetrics(t *testing.T) {
	assert.True(t, Default().Runtime.EnableMetrics)

	// A config file opts in explicitly.
	path := writeConfig(t, "telegram_token: t\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Runtime.EnableMetrics)
}

func TestLoadConfig_NonexistentFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "telegram_token: [unclosed")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvFallback(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("HOTELS_API_KEY", "env-key")

	path := writeConfig(t, "search:\n  max_hotels: 5\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.TelegramToken)
	assert.Equal(t, "env-key", cfg.HotelsAPIKey)
}

func TestLoadConfig_FileWinsOverEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "env-token")

	path := writeConfig(t, "telegram_token: file-token\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.TelegramToken)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "missing telegram token",
			mutate:  func(c *Config) { c.TelegramToken = "" },
			wantErr: "telegram_token",
		},
		{
			name:    "missing hotels key",
			mutate:  func(c *Config) { c.HotelsAPIKey = "" },
			wantErr: "hotels_api_key",
		},
		{
			name:    "zero hotels",
			mutate:  func(c *Config) { c.Search.MaxHotels = -1 },
			wantErr: "max_hotels",
		},
		{
			name:    "zero photos",
			mutate:  func(c *Config) { c.Search.MaxPhotos = -1 },
			wantErr: "max_photos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.TelegramToken = "t"
			cfg.HotelsAPIKey = "k"
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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octavo/infrastructure/config"
)

// TestLoadConfigDefaults verifies the built-in defaults for a bare
// environment.
func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8092", cfg.ServerAddress)
	assert.Equal(t, "http://localhost:8091", cfg.PandocAPIURL)
	assert.Equal(t, config.DefaultPublicationRelays, cfg.PublicationRelays)
	assert.Equal(t, config.DefaultArticleRelays, cfg.ArticleRelays)
	assert.Equal(t, 30*time.Minute, cfg.Cache.ListTTL)
	assert.Equal(t, 60*time.Minute, cfg.Cache.DetailTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.MediaTTL)
	assert.Equal(t, int64(50<<20), cfg.Media.MaxEmbedBytes)
	assert.Equal(t, 6, cfg.Throttle.ConversionBurst)
	assert.Equal(t, 10*time.Second, cfg.Throttle.ConversionRefill)
	assert.True(t, cfg.IsDevelopment())
}

// TestLoadConfigEnvironmentOverrides verifies that environment variables win
// over defaults, including relay lists and TTLs.
func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PANDOC_API_URL", "http://renderer:8091")
	t.Setenv("RELAYS_PUBLICATIONS", "wss://one.example, wss://two.example")
	t.Setenv("CACHE_TTL_LIST", "5m")
	t.Setenv("CACHE_TTL_COMMENTS", "90")
	t.Setenv("THROTTLE_CONVERSION_BURST", "0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ServerAddress)
	assert.Equal(t, "http://renderer:8091", cfg.PandocAPIURL)
	assert.Equal(t, []string{"wss://one.example", "wss://two.example"}, cfg.PublicationRelays)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ListTTL)
	assert.Equal(t, 90*time.Second, cfg.Cache.CommentsTTL)
	assert.Equal(t, 0, cfg.Throttle.ConversionBurst)
	assert.Equal(t, "debug", cfg.LogLevel)
}

// TestLoadConfigYAMLFile verifies the optional config file sits between
// defaults and environment overrides.
func TestLoadConfigYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "octavo.yaml")
	data := []byte("fetch_limit: 250\npandoc_api_url: http://files:8091\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Setenv("OCTAVO_CONFIG", path)
	t.Setenv("PANDOC_API_URL", "http://env-wins:8091")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.FetchLimit)
	assert.Equal(t, "http://env-wins:8091", cfg.PandocAPIURL)
}

// TestLoadConfigRejectsInvalidValues tests validation of the merged result.
func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad environment", key: "ENVIRONMENT", value: "staging"},
		{name: "bad log level", key: "LOG_LEVEL", value: "loud"},
		{name: "zero fetch limit", key: "FETCH_LIMIT", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.LoadConfig()
			assert.Error(t, err)
		})
	}
}

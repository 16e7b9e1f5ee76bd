package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Notifications.PollIntervalSec)
	assert.Equal(t, OrderingLatestRequest, cfg.Notifications.UnreadOrdering)
	assert.False(t, cfg.Notifications.DedupeLocal)
	assert.Equal(t, 5, cfg.Notifications.DropdownLimit)
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Empty(t, cfg.Push.URL)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: https://shop.example.com/api
notifications:
  poll_interval_sec: 10
  unread_ordering: last_response
  dedupe_local: true
push:
  url: wss://shop.example.com/ws/notifications/
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 10, cfg.Notifications.PollIntervalSec)
	assert.Equal(t, OrderingLastResponse, cfg.Notifications.UnreadOrdering)
	assert.True(t, cfg.Notifications.DedupeLocal)
	assert.Equal(t, "wss://shop.example.com/ws/notifications/", cfg.Push.URL)
	// Unset keys keep their defaults.
	assert.Equal(t, 30, cfg.API.TimeoutSec)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_API_BASE_URL", "https://env.example.com")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
}

func TestLoadConfig_RejectsUnknownOrdering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notifications:\n  unread_ordering: random\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unread_ordering")
}

func TestLoadConfig_RejectsUnknownTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display:\n  theme: neon\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display.theme")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.API.BaseURL = "https://saved.example.com"
	cfg.Notifications.PollIntervalSec = 45

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example.com", loaded.API.BaseURL)
	assert.Equal(t, 45, loaded.Notifications.PollIntervalSec)
}

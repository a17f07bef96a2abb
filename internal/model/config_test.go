package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TEAMINBOX_VIEWER_EMAIL", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.RefreshDelay())
	assert.Equal(t, time.Second, cfg.ProcessingHold())
	assert.Equal(t, "teaminbox.log", filepath.Base(cfg.Log.File))
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
viewer:
  email: bob@x.com
services:
  notifications_url: https://notify.example.com
  authorization_url: https://authz.example.com
feed:
  poll_interval_sec: 10
actions:
  processing_hold_ms: 250
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bob@x.com", cfg.Viewer.Email)
	assert.Equal(t, "https://notify.example.com", cfg.Services.NotificationsURL)
	assert.Equal(t, 10*time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.ProcessingHold())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewer:\n  email: bob@x.com\n"), 0o644))

	t.Setenv("TEAMINBOX_VIEWER_EMAIL", "alice@x.com")
	t.Setenv("TEAMINBOX_FEED_POLL_INTERVAL_SEC", "5")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", cfg.Viewer.Email)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
}

func TestLoadConfig_NonPositiveTimingsFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
feed:
  poll_interval_sec: 0
  fetch_timeout_sec: -3
actions:
  refresh_delay_ms: -1
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.RefreshDelay())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewer: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("TEAMINBOX_VIEWER_EMAIL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	in := defaultAppConfig()
	in.Viewer.Email = "bob@x.com"
	in.Services.NotificationsURL = "https://notify.example.com"
	in.Services.AuthorizationURL = "https://authz.example.com"
	require.NoError(t, SaveConfig(path, in))

	out, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, in.Viewer, out.Viewer)
	assert.Equal(t, in.Services, out.Services)
	assert.Equal(t, in.Actions, out.Actions)
}

func TestValidate_ListsMissing(t *testing.T) {
	cfg := &AppConfig{Viewer: ViewerConfig{Email: "bob@x.com"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "services.notifications_url")
	assert.Contains(t, err.Error(), "services.authorization_url")
	assert.NotContains(t, err.Error(), "viewer.email")
}

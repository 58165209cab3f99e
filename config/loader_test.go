package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 9100
generation:
  temperature: 0.9
  image_timeout: 45s
  image_concurrency: 2
storage:
  dir: /tmp/campaigns
  redis:
    addr: localhost:6379
logging:
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("RUNWAY_STORAGE_DIR", "/srv/campaigns")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.InDelta(t, 0.9, cfg.Generation.Temperature, 0.0001)
	assert.Equal(t, 45*time.Second, cfg.Generation.ImageTimeout)
	assert.Equal(t, 60*time.Second, cfg.Generation.RoadmapTimeout, "unset keys keep defaults")
	assert.Equal(t, 2, cfg.Generation.ImageConcurrency)
	assert.Equal(t, "/srv/campaigns", cfg.Storage.Dir)
	assert.Equal(t, "localhost:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, "gemini-key", cfg.Gemini.APIKey)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("RUNWAY_PORT", "not-a-port")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Generation.Temperature = 0
	assert.Error(t, cfg.Validate(), "zero temperature must be rejected")

	cfg = DefaultConfig()
	cfg.Generation.ImageConcurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestGetSanitized(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gemini.APIKey = "secret"
	cfg.Storage.Redis.Password = "hunter2"

	safe := cfg.GetSanitized()
	assert.Equal(t, "********", safe.Gemini.APIKey)
	assert.Equal(t, "********", safe.Storage.Redis.Password)
	assert.Equal(t, "secret", cfg.Gemini.APIKey, "receiver must be untouched")
}

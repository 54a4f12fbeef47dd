package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsUsableWithoutAFile(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "ptpipctl", cfg.FriendlyName)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 15*time.Second, cfg.ReceiveTimeout)
}

func TestLoadOverlaysOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camera.ini")
	contents := `
[connection]
host = 192.168.122.1
friendly_name = studio-cam

[tuning]
keepalive_interval_ms = 20000

[logging]
level = debug
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "192.168.122.1", cfg.Host)
	assert.Equal(t, "studio-cam", cfg.FriendlyName)
	assert.Equal(t, 20*time.Second, cfg.KeepAliveInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched by the file, still the default.
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, filepath.Join("/home/tester", ".authctl", "token"), c.TokenFile)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_EnvThenJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Setenv(EnvServer, "http://env:8080")
	t.Setenv(EnvTokenFile, "/tmp/env-token")
	t.Setenv(EnvTimeout, "2s")

	path := writeTempJSON(t, "", "", map[string]any{"server_url": "http://json:8080"})
	os.Args = []string{"testbin", "-c", path}

	cfg := LoadConfig()
	assert.Equal(t, "http://json:8080", cfg.ServerURL)
	assert.Equal(t, "/tmp/env-token", cfg.TokenFile)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
}

func TestParseEnv_BadTimeoutPanics(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")
	require.Panics(t, func() { parseEnv(&Config{}) })
}

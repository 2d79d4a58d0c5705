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

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Given: a config that only sets the port
	path := writeConfig(t, "http-port: \"8081\"\n")

	// When: it is loaded
	conf, err := Load(path)

	// Then: everything else falls back to defaults
	require.NoError(t, err)
	assert.Equal(t, "8081", conf.HTTPPort)
	assert.Equal(t, "info", conf.LogLevel)
	assert.False(t, conf.Redis.Enabled)
	assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	assert.Equal(t, time.Hour, conf.Redis.TTL)
	assert.Equal(t, 30*time.Minute, conf.Session.IdleTimeout)
	assert.Equal(t, time.Minute, conf.Session.ReapInterval)
	assert.Equal(t, 64, conf.Websocket.SendBuffer)
	assert.Equal(t, 60*time.Second, conf.Websocket.PongWait)
	assert.EqualValues(t, 4096, conf.Websocket.MaxMessageSize)
}

func TestLoad_Values(t *testing.T) {
	path := writeConfig(t, `
log-level: debug
redis:
  enabled: true
  host: cache
  port: "6380"
  ttl: 5m
session:
  idle-timeout: 2m
  reap-interval: 10s
websocket:
  send-buffer: 8
  write-wait: 1s
`)

	conf, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.True(t, conf.Redis.Enabled)
	assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
	assert.Equal(t, 5*time.Minute, conf.Redis.TTL)
	assert.Equal(t, 2*time.Minute, conf.Session.IdleTimeout)
	assert.Equal(t, 10*time.Second, conf.Session.ReapInterval)
	assert.Equal(t, 8, conf.Websocket.SendBuffer)
	assert.Equal(t, time.Second, conf.Websocket.WriteWait)
}

func TestMustLoad_PanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
	})
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matt-steen/taskboard/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	cfg, err := config.Load(config.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(err)
	assert.Nil(cfg)

	v := config.New()
	v.Set("api.base", "http://localhost:4000/")

	cfg, err = config.Load(v, writeConfig(t, ""))
	assert.Nil(err)
	assert.Equal("http://localhost:4000", cfg.API.Base)
	assert.Equal(10*time.Second, cfg.API.Timeout)
	assert.Equal(config.TransportWebSocket, cfg.Realtime.Transport)
	assert.Equal("ws://localhost:4000/ws", cfg.Realtime.URL)
	assert.Equal("board:", cfg.Redis.ChannelPrefix)
	assert.Equal("info", cfg.Log.Level)
}

func TestFile(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	path := writeConfig(t, `
api:
  base: https://boards.example.com/api
  timeout: 3s
realtime:
  transport: redis
redis:
  addr: redis:6379
  channel_prefix: "kanban:"
log:
  level: debug
`)

	cfg, err := config.Load(config.New(), path)
	assert.Nil(err)
	assert.Equal("https://boards.example.com/api", cfg.API.Base)
	assert.Equal(3*time.Second, cfg.API.Timeout)
	assert.Equal(config.TransportRedis, cfg.Realtime.Transport)
	assert.Equal("wss://boards.example.com/ws", cfg.Realtime.URL)
	assert.Equal("redis:6379", cfg.Redis.Addr)
	assert.Equal("kanban:", cfg.Redis.ChannelPrefix)
	assert.Equal("debug", cfg.Log.Level)
}

func TestInvalid(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	_, err := config.Load(config.New(), writeConfig(t, "realtime:\n  transport: carrier-pigeon\n"))
	assert.EqualError(err, `unknown realtime.transport "carrier-pigeon"`)

	_, err = config.Load(config.New(), writeConfig(t, "api:\n  base: not a url\n"))
	assert.NotNil(err)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

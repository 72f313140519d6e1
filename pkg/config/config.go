// Package config loads settings from defaults, an optional yaml file, and TASKBOARD_ env vars.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// These are the supported realtime transports.
const (
	TransportWebSocket = "websocket"
	TransportRedis     = "redis"
)

// Config holds every setting of the client.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig locates the HTTP API.
type APIConfig struct {
	Base    string        `mapstructure:"base"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RealtimeConfig selects how board notifications are exchanged.
type RealtimeConfig struct {
	Transport string `mapstructure:"transport"`
	URL       string `mapstructure:"url"`
}

// RedisConfig is used by the redis transport.
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

// SessionConfig locates the credential store.
type SessionConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig controls the debug log.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Dir returns the directory holding the client's files.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskboard"
	}

	return filepath.Join(home, ".taskboard")
}

// DefaultPath is the config file read when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	dir := Dir()

	v.SetDefault("api.base", "http://localhost:4000")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("realtime.transport", TransportWebSocket)
	v.SetDefault("realtime.url", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel_prefix", "board:")
	v.SetDefault("session.path", filepath.Join(dir, "session.sqlite"))
	v.SetDefault("log.file", filepath.Join(dir, "debug.log"))
	v.SetDefault("log.level", "info")
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	SetDefaults(v)

	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file at path into v, if it exists, and decodes the result. A
// missing file at the default path is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) finish() error {
	c.API.Base = strings.TrimRight(c.API.Base, "/")

	base, err := url.Parse(c.API.Base)
	if err != nil || base.Host == "" {
		return fmt.Errorf("invalid api.base %q", c.API.Base)
	}

	switch c.Realtime.Transport {
	case TransportWebSocket, TransportRedis:
	default:
		return fmt.Errorf("unknown realtime.transport %q", c.Realtime.Transport)
	}

	if c.Realtime.URL == "" {
		c.Realtime.URL = websocketURL(base)
	}

	return nil
}

// websocketURL derives the realtime endpoint from the API base: same host, ws scheme, /ws path.
func websocketURL(base *url.URL) string {
	u := *base

	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}

	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), "/api") + "/ws"

	return u.String()
}

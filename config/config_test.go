package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("CONFERENCE_AUTH_SECRET", "s3cret")

	cfg, err := New("").Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "basic", cfg.Server.Engine)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "memory", cfg.Messaging.Driver)
	assert.Equal(t, "conference:tasks:", cfg.Messaging.Redis.StreamPrefix)
	assert.Equal(t, time.Hour, cfg.Announcement.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONFERENCE_AUTH_SECRET", "x")
	t.Setenv("CONFERENCE_MESSAGING_DRIVER", "sync")
	t.Setenv("CONFERENCE_MESSAGING_REDIS_GROUP", "workers")
	t.Setenv("CONFERENCE_RATELIMIT_RPS", "2.5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sync", cfg.Messaging.Driver)
	assert.Equal(t, "workers", cfg.Messaging.Redis.Group)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
}

func TestFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conference.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  engine: gin
auth:
  enabled: false
cache:
  driver: redis
`), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.addr", "", "")
	require.NoError(t, flags.Parse([]string{"--server.addr=:7070"}))

	l := New("CONFERENCE")
	require.NoError(t, l.BindFlags(flags))
	cfg, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "gin", cfg.Server.Engine)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.False(t, cfg.Auth.Enabled)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:    ServerConfig{Engine: "basic"},
			Database:  DatabaseConfig{DSN: "file::memory:"},
			Cache:     CacheConfig{Driver: "memory"},
			Messaging: MessagingConfig{Driver: "memory", Workers: 1},
			Auth:      AuthConfig{Enabled: true, Secret: "k"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cases := map[string]func(*Config){
		"engine":    func(c *Config) { c.Server.Engine = "echo" },
		"cache":     func(c *Config) { c.Cache.Driver = "memcached" },
		"messaging": func(c *Config) { c.Messaging.Driver = "kafka" },
		"secret":    func(c *Config) { c.Auth.Secret = "" },
		"rate":      func(c *Config) { c.RateLimit = RateLimitConfig{Enabled: true, RPS: 0, Burst: 1} },
		"dsn":       func(c *Config) { c.Database.DSN = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := New("").Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

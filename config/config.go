// Package config 基于 viper 加载服务配置
//
// 优先级：命令行参数 > 环境变量（CONFERENCE_ 前缀，"." 替换为 "_"）> 配置文件 > 默认值。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix 环境变量前缀
const DefaultEnvPrefix = "CONFERENCE"

// Config 服务配置
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Messaging    MessagingConfig    `mapstructure:"messaging"`
	Auth         AuthConfig         `mapstructure:"auth"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Announcement AnnouncementConfig `mapstructure:"announcement"`
	IDs          IDConfig           `mapstructure:"ids"`
	Log          LogConfig          `mapstructure:"log"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Engine          string        `mapstructure:"engine"` // basic | gin
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Driver   string        `mapstructure:"driver"` // memory | redis
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	MaxSize  int           `mapstructure:"max_size"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MessagingConfig 任务队列配置
type MessagingConfig struct {
	Driver     string      `mapstructure:"driver"` // sync | memory | redis | nats
	Workers    int         `mapstructure:"workers"`
	QueueSize  int         `mapstructure:"queue_size"`
	MaxRetries int         `mapstructure:"max_retries"`
	Redis      RedisStream `mapstructure:"redis"`
	NATS       NATSStream  `mapstructure:"nats"`
}

// RedisStream Redis Streams 传输配置
type RedisStream struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	StreamPrefix string `mapstructure:"stream_prefix"`
	Group        string `mapstructure:"group"`
}

// NATSStream JetStream 传输配置
type NATSStream struct {
	URL           string `mapstructure:"url"`
	Stream        string `mapstructure:"stream"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// AuthConfig JWT 配置
type AuthConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// RateLimitConfig 按客户端 IP 限流
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// AnnouncementConfig 公告刷新周期
type AnnouncementConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// IDConfig 雪花 ID 节点
type IDConfig struct {
	Datacenter int64 `mapstructure:"datacenter"`
	Worker     int64 `mapstructure:"worker"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.engine":           "basic",
	"server.read_timeout":     "10s",
	"server.write_timeout":    "10s",
	"server.shutdown_timeout": "15s",

	"database.driver":         "sqlite",
	"database.dsn":            "file:conference.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	"database.max_open_conns": 1,
	"database.max_idle_conns": 1,

	"cache.driver":   "memory",
	"cache.addr":     "localhost:6379",
	"cache.password": "",
	"cache.db":       0,
	"cache.max_size": 1024,
	"cache.ttl":      "0s",

	"messaging.driver":               "memory",
	"messaging.workers":              4,
	"messaging.queue_size":           1000,
	"messaging.max_retries":          3,
	"messaging.redis.addr":           "localhost:6379",
	"messaging.redis.password":       "",
	"messaging.redis.db":             0,
	"messaging.redis.stream_prefix":  "conference:tasks:",
	"messaging.redis.group":          "conference",
	"messaging.nats.url":             "nats://127.0.0.1:4222",
	"messaging.nats.stream":          "CONFERENCE_TASKS",
	"messaging.nats.subject_prefix":  "conference.tasks.",

	"auth.enabled":   true,
	"auth.secret":    "",
	"auth.issuer":    "conference",
	"auth.token_ttl": "24h",

	"ratelimit.enabled": false,
	"ratelimit.rps":     20.0,
	"ratelimit.burst":   40,

	"announcement.interval": "1h",

	"ids.datacenter": 0,
	"ids.worker":     0,

	"log.level": "info",

	"metrics.enabled": true,
	"metrics.path":    "/metrics",
}

// Loader 封装 viper 实例
type Loader struct {
	v *viper.Viper
}

// New 创建加载器，prefix 为空时使用 DefaultEnvPrefix
func New(prefix string) *Loader {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(strings.TrimSuffix(prefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Viper 暴露底层实例，供命令行绑定使用
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// BindFlags 绑定命令行参数，参数名中的 "-" 对应配置键中的 "_"
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !strings.Contains(key, ".") {
			return
		}
		bindErr = l.v.BindPFlag(key, f)
	})
	return bindErr
}

// Load 读取可选配置文件并解析；path 为空时只使用环境变量和默认值
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load 使用默认前缀加载配置
func Load(path string) (*Config, error) {
	return New(DefaultEnvPrefix).Load(path)
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	switch c.Server.Engine {
	case "basic", "gin":
	default:
		return fmt.Errorf("unknown server engine %q", c.Server.Engine)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	switch c.Messaging.Driver {
	case "sync", "memory", "redis", "nats":
	default:
		return fmt.Errorf("unknown messaging driver %q", c.Messaging.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn required")
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("auth secret required when auth is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}
	if c.Messaging.Workers <= 0 {
		return fmt.Errorf("messaging workers must be positive")
	}
	return nil
}

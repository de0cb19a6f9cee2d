package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 服务层使用的缓存键
const (
	KeyRecentAnnouncements = "RECENT_ANNOUNCEMENTS"
	KeyFeaturedSpeaker     = "FEATURED_SPEAKER"
)

// ErrMiss 键不存在
var ErrMiss = errors.New("cache: miss")

// Store 字符串键值缓存
type Store interface {
	// Get 键不存在时返回 ErrMiss
	Get(ctx context.Context, key string) (string, error)
	// Set ttl <= 0 表示永不过期
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore 进程内实现
type MemoryStore struct {
	lru *LRU[string, string]
}

// NewMemoryStore 创建进程内缓存
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{lru: New[string, string](Config{Name: "store", MaxSize: maxSize})}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := s.lru.Get(key); ok {
		return v, nil
	}
	return "", ErrMiss
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.lru.SetWithTTL(key, value, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Delete(key)
	return nil
}

// redisClient RedisStore 使用的命令子集
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore 基于 Redis 的实现，键统一加前缀
type RedisStore struct {
	client redisClient
	prefix string
}

// RedisOptions Redis 连接配置
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore 建立连接并创建缓存
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, func() error, error) {
	client := redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return newRedisStore(client, opts.Prefix), client.Close, nil
}

func newRedisStore(client redisClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "conference:cache:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

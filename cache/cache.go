// Package cache 提供公告与推荐演讲者等派生数据的缓存
//
// Store 是服务层依赖的键值接口，MemoryStore 基于进程内 LRU，RedisStore 基于 go-redis。
package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// LRU 并发安全的泛型缓存，超出容量时驱逐最久未使用的条目
//
// 过期时间按条目记录，0 表示永不过期。
type LRU[K comparable, V any] struct {
	name   string
	config Config

	mu      sync.Mutex
	items   map[K]*list.Element
	lruList *list.List // 最近使用的在前
	stats   Stats
	now     func() time.Time
}

type entry[K comparable, V any] struct {
	key      K
	value    V
	expireAt time.Time
}

// Config 缓存配置
type Config struct {
	// Name 缓存名称（用于日志和统计）
	Name string
	// MaxSize 最大条目数，0 表示无限制
	MaxSize int
	// TTL 默认过期时间，0 表示永不过期
	TTL time.Duration
	// OnEvict 条目被驱逐或过期时回调
	OnEvict func(key, value any)
}

// Stats 缓存统计
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Expires   int64
	Size      int
}

// New 创建 LRU 缓存
func New[K comparable, V any](config Config) *LRU[K, V] {
	if config.Name == "" {
		config.Name = "unnamed"
	}
	return &LRU[K, V]{
		name:    config.Name,
		config:  config,
		items:   make(map[K]*list.Element),
		lruList: list.New(),
		now:     time.Now,
	}
}

// Get 获取未过期的值
func (c *LRU[K, V]) Get(key K) (value V, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return value, false
	}
	e := el.Value.(*entry[K, V])
	if c.expired(e) {
		c.removeLocked(el)
		c.stats.Misses++
		c.stats.Expires++
		return value, false
	}
	c.lruList.MoveToFront(el)
	c.stats.Hits++
	return e.value, true
}

// Set 使用默认 TTL 写入
func (c *LRU[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.config.TTL)
}

// SetWithTTL 指定过期时间写入，ttl <= 0 表示永不过期
func (c *LRU[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expireAt time.Time
	if ttl > 0 {
		expireAt = c.now().Add(ttl)
	}

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value, e.expireAt = value, expireAt
		c.lruList.MoveToFront(el)
		return
	}

	if c.config.MaxSize > 0 && len(c.items) >= c.config.MaxSize {
		if oldest := c.lruList.Back(); oldest != nil {
			c.removeLocked(oldest)
			c.stats.Evictions++
		}
	}
	c.items[key] = c.lruList.PushFront(&entry[K, V]{key: key, value: value, expireAt: expireAt})
}

// Delete 删除条目，返回是否存在
func (c *LRU[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeLocked(el)
	return true
}

// CleanExpired 清理过期条目，返回清理数量
func (c *LRU[K, V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cleaned := 0
	for _, el := range c.items {
		if c.expired(el.Value.(*entry[K, V])) {
			c.removeLocked(el)
			cleaned++
		}
	}
	c.stats.Expires += int64(cleaned)
	return cleaned
}

// Stats 统计副本
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.items)
	return s
}

// Len 当前条目数
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU[K, V]) String() string {
	s := c.Stats()
	return fmt.Sprintf("LRU[%s]: size=%d/%d, hits=%d, misses=%d, evictions=%d, expires=%d",
		c.name, s.Size, c.config.MaxSize, s.Hits, s.Misses, s.Evictions, s.Expires)
}

func (c *LRU[K, V]) expired(e *entry[K, V]) bool {
	return !e.expireAt.IsZero() && !c.now().Before(e.expireAt)
}

// removeLocked 需持锁调用
func (c *LRU[K, V]) removeLocked(el *list.Element) {
	e := el.Value.(*entry[K, V])
	if c.config.OnEvict != nil {
		c.config.OnEvict(e.key, e.value)
	}
	c.lruList.Remove(el)
	delete(c.items, e.key)
}

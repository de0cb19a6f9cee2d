// Package ratelimit 按客户端 IP 限流
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"conference/errors"
	"conference/httpx"
)

// ErrRateLimited 超出限流
var ErrRateLimited = errors.NewError(errors.ErrCodeTooManyRequests, "rate limit exceeded")

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter 每个 IP 一个令牌桶
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

// New 创建限流器，rps 为每秒请求数，burst <= 0 时取 rps
func New(rps float64, burst int) *Limiter {
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return &Limiter{
		limiters: make(map[string]*entry),
		rate:     rate.Limit(rps),
		burst:    burst,
		ttl:      15 * time.Minute,
		now:      time.Now,
	}
}

// Allow 客户端是否可以继续请求
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	e, ok := l.limiters[ip]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = now
	l.mu.Unlock()
	return e.limiter.AllowN(now, 1)
}

// Sweep 清理长时间不活跃的 IP，返回清理数量
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.ttl)
	n := 0
	for ip, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
			n++
		}
	}
	return n
}

// Size 当前跟踪的 IP 数
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware 超限时返回 TOO_MANY_REQUESTS
func (l *Limiter) Middleware() httpx.Middleware {
	return func(ctx httpx.IHttpContext, next func() error) error {
		if !l.Allow(ctx.ClientIP()) {
			ctx.SetHeader("Retry-After", "1")
			return ErrRateLimited
		}
		return next()
	}
}

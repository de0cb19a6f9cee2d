package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	f.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, KeyFeaturedSpeaker)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, s.Set(ctx, KeyFeaturedSpeaker, "speaker-1", 0))
	v, err := s.Get(ctx, KeyFeaturedSpeaker)
	require.NoError(t, err)
	assert.Equal(t, "speaker-1", v)

	require.NoError(t, s.Delete(ctx, KeyFeaturedSpeaker))
	require.NoError(t, s.Delete(ctx, KeyFeaturedSpeaker))
	_, err = s.Get(ctx, KeyFeaturedSpeaker)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(16))
}

func TestRedisStore(t *testing.T) {
	fake := newFakeRedis()
	s := newRedisStore(fake, "")
	exerciseStore(t, s)

	require.NoError(t, s.Set(context.Background(), KeyRecentAnnouncements, "x", -time.Second))
	assert.Equal(t, "x", fake.data["conference:cache:"+KeyRecentAnnouncements])
	assert.Equal(t, time.Duration(0), fake.ttl["conference:cache:"+KeyRecentAnnouncements])
}

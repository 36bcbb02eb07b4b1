package data

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/biz"
)

var _ biz.ResultCache = (*MemoryCache)(nil)

// MemoryCache 进程内缓存
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache 创建进程内缓存，过期条目每分钟清理一次
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

// Set ttl <= 0 时使用默认过期时间
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	b := make([]byte, len(value))
	copy(b, value)
	m.c.Set(key, b, ttl)
	return nil
}

package data

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/biz"
	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/conf"
)

// NewCache 按配置创建缓存后端，返回的 cleanup 用于释放连接
func NewCache(c *conf.Cache, logger log.Logger) (biz.ResultCache, func(), error) {
	helper := log.NewHelper(logger)

	switch c.Backend() {
	case conf.CacheMemory:
		helper.Infof("using in-memory cache, default ttl %s", c.TTL())
		return NewMemoryCache(c.TTL()), func() {}, nil

	case conf.CacheRedis:
		rc, err := NewRedisCache(c.Redis)
		if err != nil {
			return nil, nil, err
		}
		helper.Infof("using redis cache at %s", c.Redis.Addr)
		cleanup := func() {
			helper.Info("closing the redis cache")
			if err := rc.Close(); err != nil {
				helper.Errorf("closing redis cache: %v", err)
			}
		}
		return rc, cleanup, nil

	case conf.CachePostgres:
		pc, err := NewPostgresCache(c.Postgres)
		if err != nil {
			return nil, nil, err
		}
		helper.Info("using postgres cache")
		cleanup := func() {
			helper.Info("closing the postgres cache")
			if err := pc.Close(); err != nil {
				helper.Errorf("closing postgres cache: %v", err)
			}
		}
		return pc, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache type: %s", c.Type)
	}
}

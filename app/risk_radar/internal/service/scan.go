package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/biz"
	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/conf"
)

// ErrQueryRequired 缺少 query 参数
var ErrQueryRequired = errors.BadRequest("QUERY_REQUIRED", "query parameter required")

// ScanRequest 扫描请求
type ScanRequest struct {
	Query   string
	Company string
}

// ScanService 扫描接口的处理逻辑：参数校验、缓存读写、结果序列化
type ScanService struct {
	uc    *biz.ScanUseCase
	cache biz.ResultCache
	ttl   time.Duration
	log   *log.Helper
}

// NewScanService 创建扫描服务，缓存过期时间取自 cache.default_timeout
func NewScanService(uc *biz.ScanUseCase, cache biz.ResultCache, c *conf.Cache, logger log.Logger) *ScanService {
	ttl := conf.DefaultCacheTimeout
	if c != nil {
		ttl = c.TTL()
	}
	return &ScanService{
		uc:    uc,
		cache: cache,
		ttl:   ttl,
		log:   log.NewHelper(logger),
	}
}

// Scan 返回序列化后的评估结果。缓存命中时原样返回缓存内容，不访问上游
func (s *ScanService) Scan(ctx context.Context, req *ScanRequest) ([]byte, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrQueryRequired
	}
	company := req.Company
	if company == "" {
		company = req.Query
	}

	key := biz.CacheKey(req.Query)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.WithContext(ctx).Warnf("cache get %s failed, treating as miss: %v", key, err)
	} else if ok {
		s.log.WithContext(ctx).Debugf("cache hit %s", key)
		return cached, nil
	}

	res := s.uc.Summarize(ctx, company, req.Query)
	body, err := json.Marshal(res)
	if err != nil {
		return nil, errors.InternalServer("ENCODE_FAILED", err.Error())
	}

	if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
		s.log.WithContext(ctx).Warnf("cache set %s failed: %v", key, err)
	}
	return body, nil
}

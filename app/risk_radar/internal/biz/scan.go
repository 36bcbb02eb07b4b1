package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/conf"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/scoring"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/search"
)

// ResultCache 扫描结果缓存，value 为序列化后的 ScoreResult
type ResultCache interface {
	// Get 命中返回 (value, true, nil)；未命中返回 (nil, false, nil)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set 写入并设置过期时间
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Scorer 风险评分
type Scorer interface {
	Score(company string, articles []model.Article) model.ScoreResult
	// Empty 无文章时的结果，评分失败时也用它降级
	Empty(company string) model.ScoreResult
}

// CacheKey 扫描结果缓存键
func CacheKey(query string) string {
	return "scan:" + query
}

// ScanUseCase 扫描业务逻辑：抓取新闻 -> 风险评分
type ScanUseCase struct {
	source     search.NewsSource
	scorer     Scorer
	maxRecords int
	log        *log.Helper
}

// NewScanUseCase 创建扫描业务逻辑实例
func NewScanUseCase(source search.NewsSource, scorer Scorer, c *conf.Gdelt, logger log.Logger) *ScanUseCase {
	maxRecords := search.DefaultMaxRecords
	if c != nil && c.MaxRecords > 0 {
		maxRecords = c.MaxRecords
	}
	return &ScanUseCase{
		source:     source,
		scorer:     scorer,
		maxRecords: maxRecords,
		log:        log.NewHelper(logger),
	}
}

// Summarize 为公司生成风险评估。评分阶段的 panic 会被吞掉并降级为无文章结果
func (uc *ScanUseCase) Summarize(ctx context.Context, company, query string) (res model.ScoreResult) {
	data := uc.source.Fetch(ctx, query, uc.maxRecords)
	uc.log.WithContext(ctx).Debugf("fetched %d articles for query %q", len(data.Articles), query)

	defer func() {
		if r := recover(); r != nil {
			uc.log.WithContext(ctx).Errorf("scoring %q failed: %v", company, r)
			res = uc.degrade(ctx, company)
		}
	}()
	return uc.scorer.Score(company, data.Articles)
}

// degrade 返回评分表给出的无文章结果；评分表本身也出错时退到固定兜底
func (uc *ScanUseCase) degrade(ctx context.Context, company string) (res model.ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			uc.log.WithContext(ctx).Errorf("building empty result for %q failed: %v", company, r)
			res = fallbackResult(company)
		}
	}()
	return uc.scorer.Empty(company)
}

func fallbackResult(company string) model.ScoreResult {
	return model.ScoreResult{
		Name:        company,
		RiskScore:   0,
		RiskLevel:   "Low",
		Explanation: scoring.NoArticlesExplanation,
		Category:    scoring.DefaultCategory,
		News:        []model.Article{},
	}
}

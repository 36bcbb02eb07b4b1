package biz

import (
	"context"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/conf"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/scoring"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/search"
)

// mockSource 模拟新闻源
type mockSource struct {
	articles   []model.Article
	query      string
	maxRecords int
}

func (m *mockSource) Fetch(_ context.Context, query string, maxRecords int) search.Result {
	m.query = query
	m.maxRecords = maxRecords
	return search.Result{Articles: m.articles}
}

// panicScorer 评分时 panic，Empty 走真实评分表
type panicScorer struct {
	*scoring.Engine
}

func (panicScorer) Score(string, []model.Article) model.ScoreResult {
	panic("boom")
}

// brokenScorer Score 与 Empty 都 panic
type brokenScorer struct{}

func (brokenScorer) Score(string, []model.Article) model.ScoreResult { panic("boom") }

func (brokenScorer) Empty(string) model.ScoreResult { panic("no tables") }

type neutral struct{}

func (neutral) Polarity(string) float64 { return 0 }

func TestScanUseCase_Summarize(t *testing.T) {
	src := &mockSource{articles: []model.Article{
		{Title: "Fraud probe widens", Domain: "reuters.com"},
	}}
	engine := scoring.NewEngine(scoring.MustDefaultTables(), neutral{})
	uc := NewScanUseCase(src, engine, &conf.Gdelt{MaxRecords: 50}, log.DefaultLogger)

	res := uc.Summarize(context.Background(), "Acme Mining", "acme")

	assert.Equal(t, "acme", src.query)
	assert.Equal(t, 50, src.maxRecords)
	assert.Equal(t, "Acme Mining", res.Name)
	assert.Equal(t, "Mining & Metals", res.Category)
	assert.InDelta(t, 39.0, res.RiskScore, 1e-9)
	assert.Equal(t, "Medium", res.RiskLevel)
	require.Len(t, res.News, 1)
}

func TestScanUseCase_DefaultMaxRecords(t *testing.T) {
	src := &mockSource{}
	uc := NewScanUseCase(src, scoring.NewEngine(scoring.MustDefaultTables(), neutral{}), nil, log.DefaultLogger)

	res := uc.Summarize(context.Background(), "Acme", "acme")

	assert.Equal(t, search.DefaultMaxRecords, src.maxRecords)
	assert.Equal(t, scoring.NoArticlesExplanation, res.Explanation)
	assert.Equal(t, "Low", res.RiskLevel)
}

func TestScanUseCase_ScorerPanicDegrades(t *testing.T) {
	src := &mockSource{articles: []model.Article{{Title: "fraud"}}}
	engine := scoring.NewEngine(scoring.MustDefaultTables(), neutral{})
	uc := NewScanUseCase(src, panicScorer{engine}, nil, log.DefaultLogger)

	res := uc.Summarize(context.Background(), "Acme Textiles", "acme")

	assert.Equal(t, "Acme Textiles", res.Name)
	assert.Equal(t, "Textile & Apparel", res.Category)
	assert.Equal(t, 0.0, res.RiskScore)
	assert.Equal(t, "Low", res.RiskLevel)
	assert.Equal(t, scoring.NoArticlesExplanation, res.Explanation)
	assert.NotNil(t, res.News)
	assert.Equal(t, engine.Score("Acme Textiles", nil), res)
}

func TestScanUseCase_PanicUsesConfiguredLevels(t *testing.T) {
	tables, err := scoring.Compile(scoring.TablesFile{
		Keywords: map[string]int{"fraud": 30},
		Multipliers: scoring.Multipliers{
			HighRiskRegion:   1.5,
			StrictRegulation: 1.2,
			TrustedDomain:    1.3,
			HighRiskIndustry: 1.4,
		},
		Levels: []scoring.Level{
			{Name: "Severe", Min: 40},
			{Name: "Minimal", Min: 0},
		},
	})
	require.NoError(t, err)
	src := &mockSource{articles: []model.Article{{Title: "fraud"}}}
	uc := NewScanUseCase(src, panicScorer{scoring.NewEngine(tables, neutral{})}, nil, log.DefaultLogger)

	res := uc.Summarize(context.Background(), "Acme", "acme")

	assert.Equal(t, "Minimal", res.RiskLevel)
	assert.Equal(t, scoring.DefaultCategory, res.Category)
}

func TestScanUseCase_EmptyPanicFallsBack(t *testing.T) {
	src := &mockSource{articles: []model.Article{{Title: "fraud"}}}
	uc := NewScanUseCase(src, brokenScorer{}, nil, log.DefaultLogger)

	res := uc.Summarize(context.Background(), "Acme Textiles", "acme")

	assert.Equal(t, "Acme Textiles", res.Name)
	assert.Equal(t, scoring.DefaultCategory, res.Category)
	assert.Equal(t, "Low", res.RiskLevel)
	assert.NotNil(t, res.News)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "scan:acme corp", CacheKey("acme corp"))
}

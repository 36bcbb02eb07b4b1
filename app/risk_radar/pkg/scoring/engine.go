package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/logger"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

const (
	// MaxScore 风险分上限
	MaxScore = 100.0
	// SampleSize 结果中附带的样例文章数
	SampleSize = 3
	// NoArticlesExplanation 无文章时的说明
	NoArticlesExplanation = "No articles found"

	topFactors = 3
)

// Engine 风险评分引擎，对 (company, articles) 是纯函数
type Engine struct {
	tables    *Tables
	sentiment Sentimenter
}

// NewEngine 创建评分引擎
func NewEngine(tables *Tables, sentiment Sentimenter) *Engine {
	return &Engine{tables: tables, sentiment: sentiment}
}

// Tables 返回引擎使用的评分表
func (e *Engine) Tables() *Tables {
	return e.tables
}

// ArticleScore 单篇文章的评分明细
type ArticleScore struct {
	Score        float64
	MatchedTerms []string
	Sentiment    float64
	Factors      []string
}

// ScoreArticle 计算单篇文章得分。乘数顺序固定：地区 -> 可信来源 -> 高风险行业 -> 负面情绪
func (e *Engine) ScoreArticle(a model.Article) ArticleScore {
	var out ArticleScore
	title := strings.ToLower(a.Title)

	var base int
	for _, k := range e.tables.keywords {
		if k.re.MatchString(title) {
			base += k.weight
			out.MatchedTerms = append(out.MatchedTerms, k.term)
			out.Factors = append(out.Factors, "keyword: "+k.term)
		}
	}
	out.Sentiment = e.sentiment.Polarity(a.Title)
	if base == 0 {
		return out
	}

	m := e.tables.multipliers
	score := float64(base)

	country := strings.ToLower(strings.TrimSpace(a.SourceCountry))
	if _, ok := e.tables.highRiskCountries[country]; ok {
		score *= m.HighRiskRegion
		out.Factors = append(out.Factors, "high-risk region: "+a.SourceCountry)
	} else if _, ok := e.tables.strictCountries[country]; ok {
		score *= m.StrictRegulation
		out.Factors = append(out.Factors, "strict-regulation region: "+a.SourceCountry)
	}

	if e.tables.isTrusted(a.Domain) {
		score *= m.TrustedDomain
		out.Factors = append(out.Factors, "trusted source: "+normalizeDomain(a.Domain))
	}

	if industry, ok := e.tables.industryOf(a.Domain); ok {
		score *= m.HighRiskIndustry
		out.Factors = append(out.Factors, "high-risk industry: "+industry)
	}

	if out.Sentiment < m.NegativeSentimentThreshold {
		score *= 1 + math.Abs(out.Sentiment)*m.NegativeSentimentFactor
		out.Factors = append(out.Factors, "negative sentiment")
	}

	out.Score = score
	return out
}

// Score 汇总所有文章得分并生成评估结果
func (e *Engine) Score(company string, articles []model.Article) model.ScoreResult {
	res := model.ScoreResult{
		Name:     company,
		Category: e.tables.CategoryFor(company),
		News:     sample(articles),
	}

	if len(articles) == 0 {
		return e.Empty(company)
	}

	var total float64
	var factors []string
	for _, a := range articles {
		s := e.ScoreArticle(a)
		total += s.Score
		factors = append(factors, s.Factors...)
	}

	score := Normalize(total, len(articles))
	level := e.tables.LevelFor(score)

	res.RiskScore = score
	res.RiskLevel = level.Name
	res.Explanation = explain(level.Summary, factors)

	logger.Log.Debugf("scored %q: %d articles, total=%.2f, score=%.2f, level=%s",
		company, len(articles), total, score, level.Name)
	return res
}

// Empty 无文章时的评估结果：0 分、最低等级，分类仍按公司名确定
func (e *Engine) Empty(company string) model.ScoreResult {
	return model.ScoreResult{
		Name:        company,
		RiskScore:   0,
		RiskLevel:   e.tables.LevelFor(0).Name,
		Explanation: NoArticlesExplanation,
		Category:    e.tables.CategoryFor(company),
		News:        []model.Article{},
	}
}

// Normalize 按文章数取平均，截断到 [0, MaxScore] 并保留两位小数
func Normalize(total float64, count int) float64 {
	if count <= 0 || math.IsNaN(total) {
		return 0
	}
	score := total / float64(count)
	score = math.Max(0, math.Min(MaxScore, score))
	return math.Round(score*100) / 100
}

func sample(articles []model.Article) []model.Article {
	n := len(articles)
	if n > SampleSize {
		n = SampleSize
	}
	out := make([]model.Article, n)
	copy(out, articles[:n])
	return out
}

// explain 取出现次数最多的前三个因素，次数相同按首次出现排序
func explain(summary string, factors []string) string {
	top := TopFactors(factors, topFactors)
	if len(top) == 0 {
		return summary
	}
	return fmt.Sprintf("%s Key factors: %s.", summary, strings.Join(top, ", "))
}

// TopFactors 统计因素出现次数并返回前 n 个
func TopFactors(factors []string, n int) []string {
	counts := make(map[string]int, len(factors))
	var order []string
	for _, f := range factors {
		if counts[f] == 0 {
			order = append(order, f)
		}
		counts[f]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

package scoring

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

type fixedSentiment float64

func (f fixedSentiment) Polarity(string) float64 { return float64(f) }

func newTestEngine(t *testing.T, s Sentimenter) *Engine {
	t.Helper()
	tables, err := DefaultTables()
	require.NoError(t, err)
	return NewEngine(tables, s)
}

func TestScore_NoArticles(t *testing.T) {
	e := newTestEngine(t, fixedSentiment(0))

	for _, articles := range [][]model.Article{nil, {}} {
		res := e.Score("Acme Textiles", articles)
		assert.Equal(t, 0.0, res.RiskScore)
		assert.Equal(t, "Low", res.RiskLevel)
		assert.Equal(t, NoArticlesExplanation, res.Explanation)
		assert.Equal(t, "Textile & Apparel", res.Category)
		assert.Equal(t, "Acme Textiles", res.Name)
		assert.NotNil(t, res.News)
		assert.Empty(t, res.News)
	}
}

func TestScore_ForcedLaborExample(t *testing.T) {
	e := newTestEngine(t, fixedSentiment(0))
	articles := []model.Article{{
		Title:         "forced labor scandal at factory",
		Domain:        "reuters.com",
		SourceCountry: "China",
	}}

	res := e.Score("Acme", articles)

	// (40 + 20) * 1.5 * 1.3 = 117，截断到 100
	assert.Equal(t, 100.0, res.RiskScore)
	assert.Equal(t, "Critical", res.RiskLevel)
	assert.Contains(t, res.Explanation, "Multiple credible reports")
	assert.Contains(t, res.Explanation, "keyword: forced labor")
	require.Len(t, res.News, 1)
}

func TestScore_SingleKeywordExample(t *testing.T) {
	tables, err := Compile(TablesFile{
		Keywords:          map[string]int{"forced labor": 40},
		HighRiskCountries: []string{"China"},
		TrustedDomains:    []string{"reuters.com"},
		Multipliers: Multipliers{
			HighRiskRegion:             1.5,
			StrictRegulation:           1.2,
			TrustedDomain:              1.3,
			HighRiskIndustry:           1.4,
			NegativeSentimentThreshold: -0.05,
			NegativeSentimentFactor:    0.5,
		},
		Levels: []Level{{Name: "Critical", Min: 75}, {Name: "High", Min: 50}, {Name: "Medium", Min: 25}, {Name: "Low", Min: 0}},
	})
	require.NoError(t, err)
	e := NewEngine(tables, fixedSentiment(0))

	res := e.Score("Acme", []model.Article{{
		Title:         "forced labor scandal at factory",
		Domain:        "reuters.com",
		SourceCountry: "China",
	}})

	// 40 * 1.5 * 1.3
	assert.Equal(t, 78.0, res.RiskScore)
	assert.Equal(t, "Critical", res.RiskLevel)
	assert.Equal(t, DefaultCategory, res.Category)
}

func TestScoreArticle_MultiplierOrder(t *testing.T) {
	e := newTestEngine(t, fixedSentiment(-0.8))
	s := e.ScoreArticle(model.Article{
		Title:         "Lawsuit filed",
		Domain:        "www.miningweekly.com",
		SourceCountry: "Germany",
	})

	// 15 * 1.2 (strict) * 1.4 (industry) * (1 + 0.8*0.5)
	assert.InDelta(t, 15*1.2*1.4*1.4, s.Score, 1e-9)
	assert.Equal(t, []string{"lawsuit"}, s.MatchedTerms)
	assert.Equal(t, []string{
		"keyword: lawsuit",
		"strict-regulation region: Germany",
		"high-risk industry: mining",
		"negative sentiment",
	}, s.Factors)
}

func TestScoreArticle_WholeWordMatching(t *testing.T) {
	e := newTestEngine(t, fixedSentiment(0))

	tests := []struct {
		title string
		want  []string
	}{
		{"Fraudulent claims denied", nil},
		{"Accused of FRAUD again", []string{"fraud"}},
		{"Forced   labor allegations", []string{"forced labor"}},
		{"The strikeout record", nil},
		{"Fraud, bribery and more", []string{"bribery", "fraud"}},
		{"fraud fraud fraud", []string{"fraud"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			s := e.ScoreArticle(model.Article{Title: tt.title})
			assert.Equal(t, tt.want, s.MatchedTerms)
		})
	}
}

func TestScoreArticle_NoKeywordNoScore(t *testing.T) {
	e := newTestEngine(t, fixedSentiment(-1))
	s := e.ScoreArticle(model.Article{
		Title:         "Quarterly results announced",
		Domain:        "reuters.com",
		SourceCountry: "China",
	})
	assert.Equal(t, 0.0, s.Score)
	assert.Empty(t, s.Factors)
}

func TestScoreArticle_TrustedSubdomain(t *testing.T) {
	e := newTestEngine(t, fixedSentiment(0))
	s := e.ScoreArticle(model.Article{Title: "fraud probe", Domain: "uk.reuters.com"})
	assert.InDelta(t, 30*1.3, s.Score, 1e-9)
	assert.Contains(t, s.Factors, "trusted source: uk.reuters.com")
}

func TestScore_Averaging(t *testing.T) {
	e := newTestEngine(t, fixedSentiment(0))
	articles := []model.Article{
		{Title: "fraud"},       // 30
		{Title: "recall"},      // 10
		{Title: "new product"}, // 0
		{Title: "lawsuit"},     // 15
	}
	res := e.Score("Acme Bank", articles)

	assert.Equal(t, 13.75, res.RiskScore)
	assert.Equal(t, "Low", res.RiskLevel)
	assert.Equal(t, "Financial Services", res.Category)
	assert.Len(t, res.News, SampleSize)
	assert.Equal(t, "fraud", res.News[0].Title)
}

func TestScore_Idempotent(t *testing.T) {
	e := newTestEngine(t, NewVaderSentiment())
	articles := []model.Article{
		{Title: "Factory fire kills workers amid forced labor claims", Domain: "bbc.co.uk", SourceCountry: "Bangladesh"},
		{Title: "Company fined for pollution", Domain: "chemicalweek.com", SourceCountry: "France"},
		{Title: "Record profits this year", Domain: "example.com"},
	}

	first := e.Score("Acme", articles)
	second := e.Score("Acme", articles)
	assert.Equal(t, first, second)
}

func TestScore_BoundsAndLevelBrackets(t *testing.T) {
	e := newTestEngine(t, fixedSentiment(-1))
	terms := e.Tables().Terms()
	domains := []string{"reuters.com", "miningnews.net", "oilprice.com", "example.org", ""}
	countries := []string{"China", "Germany", "United States", ""}

	rng := rand.New(rand.NewSource(42))
	levels := e.Tables().Levels()
	for i := 0; i < 300; i++ {
		n := rng.Intn(20) + 1
		articles := make([]model.Article, n)
		for j := range articles {
			var words []string
			for k := 0; k < rng.Intn(5); k++ {
				words = append(words, terms[rng.Intn(len(terms))])
			}
			articles[j] = model.Article{
				Title:         strings.Join(words, " and "),
				Domain:        domains[rng.Intn(len(domains))],
				SourceCountry: countries[rng.Intn(len(countries))],
			}
		}

		res := e.Score("Acme", articles)
		require.GreaterOrEqual(t, res.RiskScore, 0.0)
		require.LessOrEqual(t, res.RiskScore, MaxScore)

		// 恰好落入一档
		var matched []string
		for k, l := range levels {
			upper := MaxScore + 1
			if k > 0 {
				upper = levels[k-1].Min
			}
			if res.RiskScore >= l.Min && res.RiskScore < upper {
				matched = append(matched, l.Name)
			}
		}
		require.Equal(t, []string{res.RiskLevel}, matched, "score %v", res.RiskScore)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.0, Normalize(0, 0))
	assert.Equal(t, 0.0, Normalize(50, -1))
	assert.Equal(t, 100.0, Normalize(500, 2))
	assert.Equal(t, 33.33, Normalize(100, 3))
	assert.Equal(t, 0.0, Normalize(-10, 1))
}

func TestTopFactors(t *testing.T) {
	factors := []string{"a", "b", "b", "c", "d", "d", "d", "e", "c"}
	assert.Equal(t, []string{"d", "b", "c"}, TopFactors(factors, 3))
	assert.Equal(t, []string{"x"}, TopFactors([]string{"x"}, 3))
	assert.Empty(t, TopFactors(nil, 3))
}

func TestExplain(t *testing.T) {
	assert.Equal(t, "Base.", explain("Base.", nil))
	assert.Equal(t, "Base. Key factors: a, b.", explain("Base.", []string{"a", "b", "a"}))
}

func TestVaderSentiment(t *testing.T) {
	v := NewVaderSentiment()
	assert.Less(t, v.Polarity("This is a terrible, horrible disaster"), 0.0)
	assert.Greater(t, v.Polarity("What a wonderful, great and happy day"), 0.0)
	assert.Equal(t, 0.0, v.Polarity(""))

	p := v.Polarity("forced labor scandal at factory")
	assert.GreaterOrEqual(t, p, -1.0)
	assert.LessOrEqual(t, p, 1.0)
}

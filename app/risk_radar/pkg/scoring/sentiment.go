package scoring

import (
	"math"

	"github.com/jonreiter/govader"
)

// Sentimenter 文本情感极性打分，返回值范围 [-1, 1]
type Sentimenter interface {
	Polarity(text string) float64
}

// VaderSentiment 基于 VADER 词典的情感打分
type VaderSentiment struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderSentiment 创建 VADER 打分器
func NewVaderSentiment() *VaderSentiment {
	return &VaderSentiment{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity 返回 VADER compound 分数
func (v *VaderSentiment) Polarity(text string) float64 {
	if text == "" {
		return 0
	}
	return clampPolarity(v.analyzer.PolarityScores(text).Compound)
}

func clampPolarity(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(-1, math.Min(1, p))
}

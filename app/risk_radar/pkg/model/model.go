package model

// Article 归一化后的新闻文章，由 News Source Adapter 产出，只读
type Article struct {
	URL           string         `json:"url"`
	Title         string         `json:"title"`
	Domain        string         `json:"domain"`
	SeenDate      string         `json:"seendate"`
	SocialImage   string         `json:"socialimage"`
	Language      string         `json:"language"`
	SourceCountry string         `json:"sourcecountry"`
	Raw           map[string]any `json:"raw"` // 上游原始记录
}

// ScoreResult 单次扫描的风险评估结果
type ScoreResult struct {
	Name        string    `json:"name"`
	RiskScore   float64   `json:"riskScore"` // 0-100，保留两位小数
	RiskLevel   string    `json:"riskLevel"`
	Explanation string    `json:"explanation"`
	Category    string    `json:"category"`
	News        []Article `json:"news"` // 最多 3 篇样例文章
}

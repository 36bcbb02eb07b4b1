package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_tables.yaml
var defaultTablesYAML []byte

// DefaultCategory 公司名未命中任何分类时的标签
const DefaultCategory = "General"

// TablesFile 评分表的 YAML 结构
type TablesFile struct {
	Keywords                  map[string]int `yaml:"keywords"`
	HighRiskCountries         []string       `yaml:"high_risk_countries"`
	StrictRegulationCountries []string       `yaml:"strict_regulation_countries"`
	TrustedDomains            []string       `yaml:"trusted_domains"`
	HighRiskIndustries        []string       `yaml:"high_risk_industries"`
	Multipliers               Multipliers    `yaml:"multipliers"`
	Levels                    []Level        `yaml:"levels"`
	Categories                []Category     `yaml:"categories"`
}

// Multipliers 逐篇文章的乘数调整
type Multipliers struct {
	HighRiskRegion             float64 `yaml:"high_risk_region"`
	StrictRegulation           float64 `yaml:"strict_regulation"`
	TrustedDomain              float64 `yaml:"trusted_domain"`
	HighRiskIndustry           float64 `yaml:"high_risk_industry"`
	NegativeSentimentThreshold float64 `yaml:"negative_sentiment_threshold"`
	NegativeSentimentFactor    float64 `yaml:"negative_sentiment_factor"`
}

// Level 风险等级阈值，score >= Min 即落入该档
type Level struct {
	Name    string  `yaml:"name"`
	Min     float64 `yaml:"min"`
	Summary string  `yaml:"summary"`
}

// Category 公司分类规则
type Category struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

type keywordRule struct {
	term   string
	weight int
	re     *regexp.Regexp
}

// Tables 编译后的只读评分表，构造完成后不再修改，可在多个 goroutine 间共享
type Tables struct {
	keywords          []keywordRule
	highRiskCountries map[string]struct{}
	strictCountries   map[string]struct{}
	trustedDomains    map[string]struct{}
	industries        []string
	multipliers       Multipliers
	levels            []Level
	categories        []Category
}

// DefaultTables 返回内置评分表
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultTablesYAML)
}

// MustDefaultTables 同 DefaultTables，内置表非法时 panic
func MustDefaultTables() *Tables {
	t, err := DefaultTables()
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTables 从文件加载评分表；path 为空时使用内置表
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scoring tables: %w", err)
	}
	t, err := ParseTables(data)
	if err != nil {
		return nil, fmt.Errorf("scoring tables %s: %w", path, err)
	}
	return t, nil
}

// ParseTables 解析并校验 YAML 评分表
func ParseTables(data []byte) (*Tables, error) {
	var f TablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scoring tables: %w", err)
	}
	return Compile(f)
}

// Compile 校验并编译评分表
func Compile(f TablesFile) (*Tables, error) {
	if len(f.Keywords) == 0 {
		return nil, fmt.Errorf("keywords table is empty")
	}
	if err := validateMultipliers(f.Multipliers); err != nil {
		return nil, err
	}
	levels, err := validateLevels(f.Levels)
	if err != nil {
		return nil, err
	}

	t := &Tables{
		highRiskCountries: toSet(f.HighRiskCountries),
		strictCountries:   toSet(f.StrictRegulationCountries),
		trustedDomains:    toSet(f.TrustedDomains),
		multipliers:       f.Multipliers,
		levels:            levels,
	}

	terms := make([]string, 0, len(f.Keywords))
	for term := range f.Keywords {
		terms = append(terms, term)
	}
	// 固定遍历顺序，保证结果可复现
	sort.Strings(terms)
	for _, term := range terms {
		weight := f.Keywords[term]
		if weight < 0 {
			return nil, fmt.Errorf("keyword %q: negative weight %d", term, weight)
		}
		norm := strings.ToLower(strings.TrimSpace(term))
		if norm == "" {
			return nil, fmt.Errorf("empty keyword")
		}
		t.keywords = append(t.keywords, keywordRule{
			term:   norm,
			weight: weight,
			re:     phraseRegexp(norm),
		})
	}

	for _, s := range f.HighRiskIndustries {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			t.industries = append(t.industries, s)
		}
	}

	for _, c := range f.Categories {
		if c.Label == "" {
			return nil, fmt.Errorf("category without label")
		}
		cat := Category{Label: c.Label}
		for _, kw := range c.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				cat.Keywords = append(cat.Keywords, kw)
			}
		}
		t.categories = append(t.categories, cat)
	}

	return t, nil
}

// phraseRegexp 构造整词/整短语匹配，短语内部允许任意空白
func phraseRegexp(term string) *regexp.Regexp {
	words := strings.Fields(term)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b` + strings.Join(words, `\s+`) + `\b`)
}

func validateMultipliers(m Multipliers) error {
	for name, v := range map[string]float64{
		"high_risk_region":   m.HighRiskRegion,
		"strict_regulation":  m.StrictRegulation,
		"trusted_domain":     m.TrustedDomain,
		"high_risk_industry": m.HighRiskIndustry,
	} {
		if v <= 0 {
			return fmt.Errorf("multiplier %s must be positive, got %v", name, v)
		}
	}
	if m.NegativeSentimentFactor < 0 {
		return fmt.Errorf("negative_sentiment_factor must not be negative")
	}
	if m.NegativeSentimentThreshold > 0 || m.NegativeSentimentThreshold < -1 {
		return fmt.Errorf("negative_sentiment_threshold must be within [-1, 0]")
	}
	return nil
}

// validateLevels 要求阈值严格递减且最后一档从 0 开始，保证 [0,100] 内每个分数恰好落入一档
func validateLevels(levels []Level) ([]Level, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("levels table is empty")
	}
	out := make([]Level, len(levels))
	copy(out, levels)
	seen := make(map[string]bool, len(out))
	for i, l := range out {
		if l.Name == "" {
			return nil, fmt.Errorf("level %d: name is required", i)
		}
		if seen[l.Name] {
			return nil, fmt.Errorf("level %q: duplicated", l.Name)
		}
		seen[l.Name] = true
		if i > 0 && l.Min >= out[i-1].Min {
			return nil, fmt.Errorf("level %q: thresholds must be strictly descending", l.Name)
		}
	}
	if last := out[len(out)-1]; last.Min != 0 {
		return nil, fmt.Errorf("level %q: lowest threshold must be 0, got %v", last.Name, last.Min)
	}
	return out, nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// LevelFor 根据分数返回风险等级
func (t *Tables) LevelFor(score float64) Level {
	for _, l := range t.levels {
		if score >= l.Min {
			return l
		}
	}
	// 负分（不会出现，分数已被截断到 [0,100]）落入最低档
	return t.levels[len(t.levels)-1]
}

// Levels 返回等级表副本
func (t *Tables) Levels() []Level {
	out := make([]Level, len(t.levels))
	copy(out, t.levels)
	return out
}

// CategoryFor 按公司名子串匹配分类
func (t *Tables) CategoryFor(company string) string {
	name := strings.ToLower(company)
	for _, c := range t.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(name, kw) {
				return c.Label
			}
		}
	}
	return DefaultCategory
}

// Terms 返回全部风险关键词（已排序），供查询增强使用
func (t *Tables) Terms() []string {
	out := make([]string, len(t.keywords))
	for i, k := range t.keywords {
		out[i] = k.term
	}
	return out
}

func (t *Tables) isTrusted(domain string) bool {
	d := normalizeDomain(domain)
	if d == "" {
		return false
	}
	if _, ok := t.trustedDomains[d]; ok {
		return true
	}
	// 子域名，例如 uk.reuters.com
	for td := range t.trustedDomains {
		if strings.HasSuffix(d, "."+td) {
			return true
		}
	}
	return false
}

func (t *Tables) industryOf(domain string) (string, bool) {
	d := normalizeDomain(domain)
	for _, s := range t.industries {
		if strings.Contains(d, s) {
			return s, true
		}
	}
	return "", false
}

func normalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	return strings.TrimPrefix(d, "www.")
}

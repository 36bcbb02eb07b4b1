package gdelt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/logger"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/search"
)

const (
	// DefaultBaseURL GDELT DOC 2.0 API 地址
	DefaultBaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"
	// DefaultTimeout 上游请求默认超时
	DefaultTimeout = 10 * time.Second
	// MaxRecordsLimit GDELT artlist 模式允许的最大条数
	MaxRecordsLimit = 250

	maxBodyBytes = 8 << 20
)

// DefaultRiskTerms 查询增强时追加的风险关键词（OR 连接）
var DefaultRiskTerms = []string{
	"forced labor",
	"child labor",
	"lawsuit",
	"fraud",
	"sanctions",
	"corruption",
	"pollution",
	"recall",
}

// Client GDELT API 客户端
type Client struct {
	baseURL   string
	client    *http.Client
	riskTerms []string
}

// Option 客户端可选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client（测试用）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithRiskTerms 开启查询增强，把 terms 以 OR 形式追加到查询后；terms 为空时使用 DefaultRiskTerms
func WithRiskTerms(terms []string) Option {
	return func(c *Client) {
		if len(terms) == 0 {
			terms = DefaultRiskTerms
		}
		c.riskTerms = terms
	}
}

// NewClient 创建一个新的 GDELT 客户端
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Ensure Client implements search.NewsSource
var _ search.NewsSource = (*Client)(nil)

// BuildParams 构造 GDELT 查询参数
func (c *Client) BuildParams(query string, maxRecords int) url.Values {
	if maxRecords <= 0 {
		maxRecords = search.DefaultMaxRecords
	}
	if maxRecords > MaxRecordsLimit {
		maxRecords = MaxRecordsLimit
	}
	return url.Values{
		"format":     {"json"},
		"timespan":   {"FULL"},
		"query":      {c.buildQuery(query)},
		"mode":       {"artlist"},
		"maxrecords": {strconv.Itoa(maxRecords)},
		"sort":       {"hybridrel"},
	}
}

func (c *Client) buildQuery(query string) string {
	if len(c.riskTerms) == 0 {
		return query
	}
	terms := make([]string, 0, len(c.riskTerms))
	for _, t := range c.riskTerms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		// GDELT 要求短语加引号
		if strings.ContainsRune(t, ' ') {
			t = strconv.Quote(t)
		}
		terms = append(terms, t)
	}
	if len(terms) == 0 {
		return query
	}
	return fmt.Sprintf("%s (%s)", query, strings.Join(terms, " OR "))
}

// Fetch 执行一次抓取。任何失败都只记录日志并返回空列表，不重试
func (c *Client) Fetch(ctx context.Context, query string, maxRecords int) search.Result {
	raw, err := c.doFetch(ctx, query, maxRecords)
	if err != nil {
		logger.Log.Warnf("GDELT fetch error [%s]: %v", query, err)
		return search.Empty()
	}
	return Normalize(raw)
}

func (c *Client) doFetch(ctx context.Context, query string, maxRecords int) (any, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.RawQuery = c.BuildParams(query, maxRecords).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("gdelt api error (status %d): %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	// GDELT 对非法查询返回 200 + text/html 的提示文本
	if ct := res.Header.Get("Content-Type"); !isJSON(ct) {
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}
	return payload, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// Normalize 把上游 JSON 转为固定结构的文章列表，非对象条目直接跳过
func Normalize(raw any) search.Result {
	obj, ok := raw.(map[string]any)
	if !ok {
		return search.Empty()
	}
	list, ok := obj["articles"].([]any)
	if !ok {
		return search.Empty()
	}

	articles := make([]model.Article, 0, len(list))
	for _, item := range list {
		a, ok := item.(map[string]any)
		if !ok {
			continue
		}
		articles = append(articles, model.Article{
			URL:           str(a, "url"),
			Title:         str(a, "title"),
			Domain:        str(a, "domain"),
			SeenDate:      str(a, "seendate"),
			SocialImage:   str(a, "socialimage"),
			Language:      str(a, "language"),
			SourceCountry: str(a, "sourcecountry"),
			Raw:           a,
		})
	}
	return search.Result{Articles: articles}
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

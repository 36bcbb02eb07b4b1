package search

import (
	"context"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

// DefaultMaxRecords 单次抓取的默认文章数
const DefaultMaxRecords = 75

// NewsSource 定义新闻源适配器接口
// 实现方必须吞掉所有上游错误，失败时返回空列表
type NewsSource interface {
	Fetch(ctx context.Context, query string, maxRecords int) Result
}

// Result 新闻源返回的归一化结果
type Result struct {
	Articles []model.Article `json:"articles"`
}

// Empty 返回一个空结果（Articles 非 nil，序列化为 []）
func Empty() Result {
	return Result{Articles: []model.Article{}}
}

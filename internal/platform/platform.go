package platform

import (
	"context"

	"PaperScope/internal/models"
)

// 排序方式
const (
	SortRelevance = "relevance" // 按相关度（搜索场景）
	SortSubmitted = "submitted" // 按提交日期降序（最新论文场景）
)

// Query 引擎查询参数（统一接口）
type Query struct {
	Keywords   []string
	Categories []string
	DateFrom   string // YYYY-MM-DD
	DateTo     string // YYYY-MM-DD
	Limit      int
	SortBy     string // SortRelevance / SortSubmitted，空值由引擎自行决定
}

// Result 查询结果
type Result struct {
	Total  int
	Papers []*models.Paper
}

// Platform 检索引擎接口，所有引擎（arXiv/Semantic Scholar/PubMed）都需实现
type Platform interface {
	Name() string

	// Search 执行一次检索并返回标准化的论文列表
	Search(ctx context.Context, q Query) (Result, error)

	GetConfig() Config
}

type Config interface {
	Validate() error
}

package models

import (
	"time"
)

// 历史记录类型
const (
	HistoryMultiEngine  = "multi_engine"
	HistoryArxivSearch  = "arxiv_search"
	HistoryLatestPapers = "latest_papers"
)

// HistoryRecord 一次搜索的历史记录，写入后不可变（只追加、只读取）
type HistoryRecord struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Timestamp     time.Time              `json:"timestamp"`
	Params        map[string]interface{} `json:"params"`
	ResultSummary map[string]interface{} `json:"result_summary"`
	Papers        []*Paper               `json:"papers,omitempty"` // 可选的完整结果
}

// ValidHistoryType 校验记录类型
func ValidHistoryType(t string) bool {
	switch t {
	case HistoryMultiEngine, HistoryArxivSearch, HistoryLatestPapers:
		return true
	}
	return false
}

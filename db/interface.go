package db

import (
	"context"
	"errors"

	"PaperScope/internal/models"
)

// ErrNotFound 查询的记录不存在
var ErrNotFound = errors.New("record not found")

// HistoryStorage 搜索历史存储。记录一经写入不再修改，只会因超出
// 每种类型的保留上限被淘汰。
type HistoryStorage interface {
	// Save 追加一条历史记录，并淘汰该类型下最旧的超额记录
	Save(ctx context.Context, record *models.HistoryRecord) error

	// List 按时间倒序返回某类型的历史，recordType 为空时返回全部类型
	List(ctx context.Context, recordType string, limit int) ([]*models.HistoryRecord, error)

	// Get 按 id 取单条记录，不存在时返回 ErrNotFound
	Get(ctx context.Context, id string) (*models.HistoryRecord, error)

	Close() error
}

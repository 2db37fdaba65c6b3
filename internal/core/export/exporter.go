package export

import (
	"fmt"
	"io"

	"PaperScope/internal/models"
)

// Exporter 导出器接口，写入任意 io.Writer，HTTP 下载和落盘都能用
type Exporter interface {
	Export(w io.Writer, papers []*models.Paper) error

	// ContentType 对应的 MIME 类型，用于 HTTP 响应头
	ContentType() string

	// FileExt 建议的文件扩展名，不带点
	FileExt() string
}

// ErrUnknownFormat 请求了不支持的导出格式
type ErrUnknownFormat struct {
	Format string
}

func (e *ErrUnknownFormat) Error() string {
	return fmt.Sprintf("不支持的导出格式: %s", e.Format)
}

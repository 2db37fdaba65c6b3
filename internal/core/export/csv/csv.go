package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"PaperScope/internal/models"
)

type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

func (e *CSVExporter) FileExt() string { return "csv" }

func (e *CSVExporter) Export(w io.Writer, papers []*models.Paper) error {
	// BOM 让 Excel 正确识别 UTF-8
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("写入 BOM 失败: %w", err)
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	// 写入表头
	headers := []string{
		"数据源", "平台ID", "标题", "标题译文", "作者",
		"摘要", "摘要译文", "关键词", "相关性说明", "分类",
		"期刊/会议", "引用数", "发表日期", "URL", "PDF",
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}

	for _, p := range papers {
		record := []string{
			p.Source,
			p.SourceID,
			p.Title,
			p.TitleTranslated,
			strings.Join(p.Authors, "; "),
			truncate(p.Abstract, 500),
			truncate(p.AbstractTranslated, 500),
			strings.Join(p.Keywords, "; "),
			p.RelevanceSummary,
			strings.Join(p.Categories, "; "),
			p.Venue,
			fmt.Sprintf("%d", p.CitationCount),
			p.Published,
			p.URL,
			p.PDFURL,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("写入数据失败: %w", err)
		}
	}

	return nil
}

// truncate 按字符数截断，避免把中文字符切成半个
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

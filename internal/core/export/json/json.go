package json

import (
	"encoding/json"
	"fmt"
	"io"

	"PaperScope/internal/models"
)

type JSONExporter struct{}

func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

func (e *JSONExporter) ContentType() string { return "application/json; charset=utf-8" }

func (e *JSONExporter) FileExt() string { return "json" }

func (e *JSONExporter) Export(w io.Writer, papers []*models.Paper) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(papers); err != nil {
		return fmt.Errorf("JSON 序列化失败: %w", err)
	}
	return nil
}

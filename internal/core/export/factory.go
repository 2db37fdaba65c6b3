package export

import (
	csvexp "PaperScope/internal/core/export/csv"
	jsonexp "PaperScope/internal/core/export/json"
)

// New 按格式名创建导出器，目前支持 csv 和 json
func New(format string) (Exporter, error) {
	switch format {
	case "csv":
		return csvexp.NewCSVExporter(), nil
	case "json", "":
		return jsonexp.NewJSONExporter(), nil
	}
	return nil, &ErrUnknownFormat{Format: format}
}

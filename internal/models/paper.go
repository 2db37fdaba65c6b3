package models

// Paper 统一的论文数据模型，独立于具体引擎（arXiv/Semantic Scholar/PubMed）
// 各引擎的 SourceID 格式不同：
//   - arxiv:            2408.12345 或 2408.12345v2（带版本号）
//   - semantic_scholar: 40 位十六进制哈希
//   - pubmed:           纯数字 uid
type Paper struct {
	Source             string   `json:"source"`
	SourceID           string   `json:"paper_id"`
	URL                string   `json:"url"`
	PDFURL             string   `json:"pdf_url,omitempty"`
	Title              string   `json:"title"`
	TitleTranslated    string   `json:"title_zh,omitempty"`
	Abstract           string   `json:"abstract"`
	AbstractTranslated string   `json:"abstract_zh,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`          // LLM 提取的中文关键词
	RelevanceSummary   string   `json:"relevance_summary,omitempty"` // 与检索主题的相关性概述
	Authors            []string `json:"authors"`
	Categories         []string `json:"categories,omitempty"`
	Venue              string   `json:"venue,omitempty"`
	CitationCount      int      `json:"citation_count,omitempty"`
	Published          string   `json:"published,omitempty"` // YYYY-MM-DD，未知时为空
}

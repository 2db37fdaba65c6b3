package semanticscholar

import (
	"encoding/json"
	"fmt"
	"strings"

	"PaperScope/internal/models"
)

type searchResponse struct {
	Total  int          `json:"total"`
	Offset int          `json:"offset"`
	Data   []paperEntry `json:"data"`
}

type paperEntry struct {
	PaperID         string        `json:"paperId"`
	Title           string        `json:"title"`
	Abstract        string        `json:"abstract"`
	Year            int           `json:"year"`
	PublicationDate string        `json:"publicationDate"`
	URL             string        `json:"url"`
	Venue           string        `json:"venue"`
	CitationCount   int           `json:"citationCount"`
	ReferenceCount  int           `json:"referenceCount"`
	FieldsOfStudy   []string      `json:"fieldsOfStudy"`
	Authors         []authorEntry `json:"authors"`
	OpenAccessPdf   *pdfEntry     `json:"openAccessPdf"`
}

type authorEntry struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type pdfEntry struct {
	URL string `json:"url"`
}

// ParseSearchResponse 解析 /paper/search 的 JSON 响应并标准化
func ParseSearchResponse(body []byte) ([]*models.Paper, int, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse response: %w", err)
	}

	var papers []*models.Paper
	for _, e := range resp.Data {
		p := &models.Paper{
			Source:        Name,
			SourceID:      e.PaperID,
			URL:           e.URL,
			Title:         e.Title,
			Abstract:      e.Abstract, // 部分论文没有摘要，保持为空串
			Venue:         e.Venue,
			CitationCount: e.CitationCount,
			Categories:    e.FieldsOfStudy,
		}

		for _, a := range e.Authors {
			name := strings.TrimSpace(a.Name)
			if name != "" {
				p.Authors = append(p.Authors, name)
			}
		}

		if e.OpenAccessPdf != nil {
			p.PDFURL = strings.TrimSpace(e.OpenAccessPdf.URL)
		}

		if e.PublicationDate != "" {
			p.Published = e.PublicationDate
		} else if e.Year > 0 {
			p.Published = fmt.Sprintf("%d", e.Year)
		}

		papers = append(papers, p)
	}

	return papers, resp.Total, nil
}

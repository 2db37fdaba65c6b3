package pubmed

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"PaperScope/internal/models"
)

type esearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// ParseESearchResponse 解析 esearch 的 JSON 响应，返回 uid 列表和命中总数
func ParseESearchResponse(body []byte) ([]string, int, error) {
	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse esearch response: %w", err)
	}

	total := 0
	fmt.Sscanf(resp.ESearchResult.Count, "%d", &total)
	return resp.ESearchResult.IDList, total, nil
}

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string  `xml:"PMID"`
	Article article `xml:"Article"`
}

type article struct {
	Title    string        `xml:"ArticleTitle"`
	Abstract abstractBlock `xml:"Abstract"`
	Authors  []author      `xml:"AuthorList>Author"`
	Journal  journal       `xml:"Journal"`
	Date     articleDate   `xml:"ArticleDate"`
}

type abstractBlock struct {
	// 结构化摘要有多个带 Label 的段落，拼接成一段
	Texts []abstractText `xml:"AbstractText"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

type author struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
	Initials string `xml:"Initials"`
	// 机构作者没有姓名，只有 CollectiveName
	CollectiveName string `xml:"CollectiveName"`
}

type journal struct {
	Title string  `xml:"Title"`
	Issue pubDate `xml:"JournalIssue>PubDate"`
}

type pubDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type articleDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

// ParseEfetchResponse 解析 efetch 的 PubmedArticleSet XML 并标准化
func ParseEfetchResponse(body []byte) ([]*models.Paper, error) {
	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("failed to parse efetch response: %w", err)
	}

	var papers []*models.Paper
	for _, a := range set.Articles {
		uid := strings.TrimSpace(a.Citation.PMID)
		if uid == "" {
			continue
		}

		p := &models.Paper{
			Source:   Name,
			SourceID: uid,
			URL:      ArticleURL(uid),
			Title:    strings.TrimSpace(a.Citation.Article.Title),
			Abstract: joinAbstract(a.Citation.Article.Abstract),
			Venue:    strings.TrimSpace(a.Citation.Article.Journal.Title),
		}

		for _, au := range a.Citation.Article.Authors {
			if name := authorName(au); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}

		p.Published = publishedDate(a.Citation.Article)
		papers = append(papers, p)
	}

	return papers, nil
}

func joinAbstract(block abstractBlock) string {
	var parts []string
	for _, t := range block.Texts {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		if t.Label != "" {
			text = t.Label + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

func authorName(a author) string {
	if a.CollectiveName != "" {
		return strings.TrimSpace(a.CollectiveName)
	}
	name := strings.TrimSpace(a.ForeName + " " + a.LastName)
	return name
}

// publishedDate 优先取 ArticleDate，没有则退回期刊的 PubDate
func publishedDate(a article) string {
	if d := formatDate(a.Date.Year, a.Date.Month, a.Date.Day); d != "" {
		return d
	}
	return formatDate(a.Journal.Issue.Year, a.Journal.Issue.Month, a.Journal.Issue.Day)
}

func formatDate(year, month, day string) string {
	year = strings.TrimSpace(year)
	if year == "" {
		return ""
	}

	month = monthNumber(strings.TrimSpace(month))
	if month == "" {
		return year
	}

	day = strings.TrimSpace(day)
	if day == "" {
		return fmt.Sprintf("%s-%s", year, month)
	}
	if len(day) == 1 {
		day = "0" + day
	}
	return fmt.Sprintf("%s-%s-%s", year, month, day)
}

func monthNumber(m string) string {
	if m == "" {
		return ""
	}
	if len(m) <= 2 {
		if len(m) == 1 {
			return "0" + m
		}
		return m
	}
	if t, err := time.Parse("Jan", m); err == nil {
		return t.Format("01")
	}
	return ""
}

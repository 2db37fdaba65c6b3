package semanticscholar

import (
	"testing"
)

const sampleResponse = `{
  "total": 1523,
  "offset": 0,
  "data": [
    {
      "paperId": "649def34f8be52c8b66281af98ae884c09aef38b",
      "title": "Construction of the Literature Graph in Semantic Scholar",
      "abstract": "We describe a deployed scalable system.",
      "year": 2018,
      "publicationDate": "2018-05-04",
      "url": "https://www.semanticscholar.org/paper/649def34f8be52c8b66281af98ae884c09aef38b",
      "venue": "NAACL",
      "citationCount": 453,
      "referenceCount": 35,
      "fieldsOfStudy": ["Computer Science"],
      "authors": [
        {"authorId": "1741101", "name": "Waleed Ammar"},
        {"authorId": "46258841", "name": "Dirk Groeneveld"}
      ],
      "openAccessPdf": {"url": "https://aclanthology.org/N18-3011.pdf"}
    },
    {
      "paperId": "0f40b1f08821e22e859c6050916cec3667778613",
      "title": "Paper Without Extras",
      "abstract": null,
      "year": 2020,
      "authors": [],
      "openAccessPdf": null
    }
  ]
}`

func TestParseSearchResponse(t *testing.T) {
	papers, total, err := ParseSearchResponse([]byte(sampleResponse))
	if err != nil {
		t.Fatalf("ParseSearchResponse() failed: %v", err)
	}

	if total != 1523 {
		t.Errorf("total = %d, expected 1523", total)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, expected 2", len(papers))
	}

	p := papers[0]
	if p.Source != Name {
		t.Errorf("Source = %q, expected %q", p.Source, Name)
	}
	if p.SourceID != "649def34f8be52c8b66281af98ae884c09aef38b" {
		t.Errorf("SourceID = %q", p.SourceID)
	}
	if p.Venue != "NAACL" {
		t.Errorf("Venue = %q, expected NAACL", p.Venue)
	}
	if p.CitationCount != 453 {
		t.Errorf("CitationCount = %d, expected 453", p.CitationCount)
	}
	if p.PDFURL != "https://aclanthology.org/N18-3011.pdf" {
		t.Errorf("PDFURL = %q", p.PDFURL)
	}
	if p.Published != "2018-05-04" {
		t.Errorf("Published = %q, expected 2018-05-04", p.Published)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Waleed Ammar" {
		t.Errorf("Authors = %v", p.Authors)
	}

	// 缺字段的论文不应当 panic，空摘要保持空串
	p2 := papers[1]
	if p2.Abstract != "" {
		t.Errorf("Abstract = %q, expected empty", p2.Abstract)
	}
	if p2.PDFURL != "" {
		t.Errorf("PDFURL = %q, expected empty", p2.PDFURL)
	}
	// 没有 publicationDate 时退回年份
	if p2.Published != "2020" {
		t.Errorf("Published = %q, expected 2020", p2.Published)
	}
}

func TestParseSearchResponseInvalid(t *testing.T) {
	if _, _, err := ParseSearchResponse([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestBuildYearRange(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		expected string
	}{
		{"both", "2020-01-15", "2024-06-30", "2020-2024"},
		{"from only", "2020-01-15", "", "2020-"},
		{"to only", "", "2024-06-30", "-2024"},
		{"neither", "", "", ""},
		{"invalid dates ignored", "not-a-date", "also-bad", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildYearRange(tt.from, tt.to); got != tt.expected {
				t.Errorf("buildYearRange(%q, %q) = %q, expected %q", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

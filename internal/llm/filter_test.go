package llm

import (
	"context"
	"errors"
	"testing"
)

func TestFilterPapersFewerThanLimit(t *testing.T) {
	fake := &fakeChatModel{reply: "should not be called"}
	f := NewFilter(fake)

	papers := makePapers(
		[2]string{"arxiv", "2408.12345v1"},
		[2]string{"pubmed", "38991234"},
	)

	got := f.FilterPapers(context.Background(), "test", papers, 20)
	if len(got) != 2 {
		t.Fatalf("len = %d, expected 2", len(got))
	}
	if fake.callCount() != 0 {
		t.Errorf("LLM called %d times, expected 0", fake.callCount())
	}
}

func TestFilterPapersSelectsByID(t *testing.T) {
	// LLM 按相关性乱序返回，结果必须恢复原列表顺序
	fake := &fakeChatModel{reply: "38991234\n2408.12345\n"}
	f := NewFilter(fake)

	papers := makePapers(
		[2]string{"arxiv", "2408.12345v1"},
		[2]string{"arxiv", "2407.00001"},
		[2]string{"semantic_scholar", "649def34f8be52c8b66281af98ae884c09aef38b"},
		[2]string{"pubmed", "38991234"},
	)

	got := f.FilterPapers(context.Background(), "test", papers, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, expected 2", len(got))
	}
	if got[0].SourceID != "2408.12345v1" {
		t.Errorf("got[0] = %q, expected 2408.12345v1", got[0].SourceID)
	}
	if got[1].SourceID != "38991234" {
		t.Errorf("got[1] = %q, expected 38991234", got[1].SourceID)
	}
}

func TestFilterPapersLLMError(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("boom")}
	f := NewFilter(fake)

	papers := makePapers(
		[2]string{"arxiv", "2408.11111"},
		[2]string{"arxiv", "2408.22222"},
		[2]string{"arxiv", "2408.33333"},
		[2]string{"pubmed", "38991234"},
	)

	got := f.FilterPapers(context.Background(), "test", papers, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, expected 3", len(got))
	}
	// LLM 出错时退回前 N 篇
	for i, want := range []string{"2408.11111", "2408.22222", "2408.33333"} {
		if got[i].SourceID != want {
			t.Errorf("got[%d] = %q, expected %q", i, got[i].SourceID, want)
		}
	}
}

func TestFilterPapersUnparseableFallsBackBalanced(t *testing.T) {
	fake := &fakeChatModel{reply: "抱歉，我无法完成这个任务。"}
	f := NewFilter(fake)

	papers := makePapers(
		[2]string{"arxiv", "2408.11111"},
		[2]string{"arxiv", "2408.22222"},
		[2]string{"arxiv", "2408.33333"},
		[2]string{"pubmed", "38991234"},
		[2]string{"pubmed", "38991235"},
	)

	got := f.FilterPapers(context.Background(), "test", papers, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, expected 2", len(got))
	}
	// 来源均衡：arxiv 和 pubmed 各取一篇，且保持原顺序
	if got[0].SourceID != "2408.11111" || got[1].SourceID != "38991234" {
		t.Errorf("got = [%q, %q], expected balanced pick", got[0].SourceID, got[1].SourceID)
	}
}

func TestFilterPapersNilModel(t *testing.T) {
	f := NewFilter(nil)
	papers := makePapers(
		[2]string{"arxiv", "2408.11111"},
		[2]string{"arxiv", "2408.22222"},
	)

	got := f.FilterPapers(context.Background(), "test", papers, 1)
	if len(got) != 1 || got[0].SourceID != "2408.11111" {
		t.Errorf("expected first paper, got %v", got)
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"arxiv id", "2408.12345", "2408.12345"},
		{"arxiv id with version", "2408.12345v2", "2408.12345"},
		{"arxiv url", "https://arxiv.org/abs/2408.12345v1", "2408.12345"},
		{"arxiv pdf url", "https://arxiv.org/pdf/2408.12345.pdf", "2408.12345"},
		{"semantic scholar hash", "649def34f8be52c8b66281af98ae884c09aef38b", "649def34f8be52c8b66281af98ae884c09aef38b"},
		{"pubmed uid", "38991234", "38991234"},
		{"bullet prefix", "- 38991234", "38991234"},
		{"short number rejected", "3", ""},
		{"free text rejected", "以下是筛选结果", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeID(tt.input); got != tt.expected {
				t.Errorf("normalizeID(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

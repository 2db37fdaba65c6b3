package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"PaperScope/internal/models"
	"PaperScope/pkg/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Filter 用 LLM 对多引擎合并后的结果做相关性筛选。
// 筛选永远不会让整个流水线失败：LLM 出错或返回无法解析时退回取前 N 篇。
type Filter struct {
	model model.BaseChatModel
}

func NewFilter(m model.BaseChatModel) *Filter {
	return &Filter{model: m}
}

const filterSystemPrompt = `你是一个学术论文筛选助手。用户会给你一个检索主题和一组候选论文（带编号和论文 ID）。
请从中挑选与主题最相关的论文，按相关性从高到低排列。

输出要求：
- 只输出被选中论文的"论文 ID"，每行一个
- 不要输出编号、标题、解释或其他任何文字
- 最多输出 %d 个 ID`

var (
	arxivIDPattern  = regexp.MustCompile(`^\d{4}\.\d{4,5}(v\d+)?$`)
	sha1IDPattern   = regexp.MustCompile(`^[0-9a-f]{40}$`)
	pubmedIDPattern = regexp.MustCompile(`^\d+$`)
)

// FilterPapers 返回筛选后的论文，保持 papers 原有顺序，最多 maxResults 篇。
// len(papers) <= maxResults 时原样返回，不调用 LLM。
func (f *Filter) FilterPapers(ctx context.Context, query string, papers []*models.Paper, maxResults int) []*models.Paper {
	if maxResults <= 0 || len(papers) == 0 {
		return nil
	}
	if len(papers) <= maxResults {
		return papers
	}
	if f == nil || f.model == nil {
		logger.Warn("[Filter] 未配置 LLM，直接取前 %d 篇", maxResults)
		return papers[:maxResults]
	}

	messages := []*schema.Message{
		{
			Role:    schema.System,
			Content: fmt.Sprintf(filterSystemPrompt, maxResults),
		},
		{
			Role:    schema.User,
			Content: buildFilterPrompt(query, papers),
		},
	}

	resp, err := f.model.Generate(ctx, messages)
	if err != nil || resp == nil || resp.Content == "" {
		logger.Warn("[Filter] LLM 筛选失败，回退取前 %d 篇: %v", maxResults, err)
		return papers[:maxResults]
	}

	selected := matchSelectedIDs(resp.Content, papers, maxResults)
	if len(selected) == 0 {
		logger.Warn("[Filter] LLM 输出无法解析出有效 ID，按来源均衡取前 %d 篇", maxResults)
		return fallbackBalanced(papers, maxResults)
	}

	logger.Info("[Filter] LLM 从 %d 篇中筛出 %d 篇", len(papers), len(selected))
	return selected
}

func buildFilterPrompt(query string, papers []*models.Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "检索主题: %s\n\n候选论文:\n\n", query)

	for i, p := range papers {
		abstract := p.Abstract
		if runes := []rune(abstract); len(runes) > 500 {
			abstract = string(runes[:500])
		}
		fmt.Fprintf(&b, "[%d] 论文 ID: %s (来源: %s)\n标题: %s\n摘要: %s\n\n", i, p.SourceID, p.Source, p.Title, abstract)
	}
	return b.String()
}

// matchSelectedIDs 逐行解析 LLM 输出中的论文 ID，并映射回原列表。
// 返回结果按原列表顺序排列。
func matchSelectedIDs(content string, papers []*models.Paper, maxResults int) []*models.Paper {
	wanted := map[string]bool{}
	for _, line := range strings.Split(content, "\n") {
		id := normalizeID(line)
		if id != "" {
			wanted[id] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	var selected []*models.Paper
	for _, p := range papers {
		if wanted[normalizeID(p.SourceID)] {
			selected = append(selected, p)
			if len(selected) >= maxResults {
				break
			}
		}
	}
	return selected
}

// normalizeID 从一行文本中提取规范化的论文 ID；不认识的格式返回空串。
// arXiv ID 去掉版本号后缀，保证 2408.12345v2 与 2408.12345 能匹配。
func normalizeID(line string) string {
	id := strings.TrimSpace(line)
	id = strings.Trim(id, "-*• \t")

	// LLM 有时会输出完整 URL，取最后一段
	if strings.Contains(id, "://") {
		id = strings.TrimSuffix(id, "/")
		if idx := strings.LastIndex(id, "/"); idx >= 0 {
			id = id[idx+1:]
		}
	}
	id = strings.TrimSuffix(id, ".pdf")

	switch {
	case arxivIDPattern.MatchString(id):
		if idx := strings.LastIndex(id, "v"); idx > 0 {
			id = id[:idx]
		}
		return id
	case sha1IDPattern.MatchString(id):
		return id
	case pubmedIDPattern.MatchString(id) && len(id) > 5:
		return id
	}
	return ""
}

// fallbackBalanced 按来源轮转取满 maxResults 篇，再按原顺序排好。
// 用于 LLM 响应解析失败的情况，避免某个引擎独占名额。
func fallbackBalanced(papers []*models.Paper, maxResults int) []*models.Paper {
	bySource := map[string][]int{}
	var sources []string
	for i, p := range papers {
		if _, ok := bySource[p.Source]; !ok {
			sources = append(sources, p.Source)
		}
		bySource[p.Source] = append(bySource[p.Source], i)
	}

	picked := map[int]bool{}
	for len(picked) < maxResults {
		progressed := false
		for _, s := range sources {
			if len(bySource[s]) == 0 {
				continue
			}
			idx := bySource[s][0]
			bySource[s] = bySource[s][1:]
			picked[idx] = true
			progressed = true
			if len(picked) >= maxResults {
				break
			}
		}
		if !progressed {
			break
		}
	}

	var result []*models.Paper
	for i, p := range papers {
		if picked[i] {
			result = append(result, p)
		}
	}
	return result
}

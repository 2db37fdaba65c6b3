package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"PaperScope/internal/models"
	"PaperScope/pkg/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// NoAbstractPlaceholder 数据源没有给摘要时展示的占位文本
const NoAbstractPlaceholder = "（数据源未提供摘要）"

// Translator 逐篇调用 LLM，产出中文标题、中文摘要、关键词和相关性说明
type Translator struct {
	model   model.BaseChatModel
	workers int
}

func NewTranslator(m model.BaseChatModel, workers int) *Translator {
	if workers <= 0 {
		workers = 5
	}
	return &Translator{model: m, workers: workers}
}

type translation struct {
	TitleZh          string   `json:"title_zh"`
	AbstractZh       string   `json:"abstract_zh"`
	Keywords         []string `json:"keywords"`
	RelevanceSummary string   `json:"relevance_summary"`
}

const translateSystemPrompt = `你是一个学术论文翻译助手。用户会给你一个检索主题和一篇英文论文的标题与摘要。
请完成以下工作并以 JSON 输出：
1. title_zh: 标题的中文翻译
2. abstract_zh: 摘要的中文翻译（保留专业术语的英文原文）
3. keywords: 3-5 个中文关键词
4. relevance_summary: 一句话说明这篇论文与检索主题的关系

只输出 JSON 对象，不要输出其他任何文字。`

// TranslatePaper 翻译单篇论文，结果直接写回 paper 的对应字段。
// LLM 失败时返回错误，调用方决定是否容忍。
func (t *Translator) TranslatePaper(ctx context.Context, query string, paper *models.Paper) error {
	if t == nil || t.model == nil {
		return fmt.Errorf("未配置 LLM")
	}

	// 部分数据源没有摘要，只让模型处理标题
	hasAbstract := strings.TrimSpace(paper.Abstract) != ""
	userPrompt := fmt.Sprintf("检索主题: %s\n\n标题: %s", query, paper.Title)
	if hasAbstract {
		userPrompt += "\n\n摘要: " + paper.Abstract
	}

	messages := []*schema.Message{
		{
			Role:    schema.System,
			Content: translateSystemPrompt,
		},
		{
			Role:    schema.User,
			Content: userPrompt,
		},
	}

	resp, err := t.model.Generate(ctx, messages)
	if err != nil {
		return fmt.Errorf("LLM 翻译失败: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return fmt.Errorf("LLM 返回空响应")
	}

	tr, err := parseTranslation(resp.Content)
	if err != nil {
		return fmt.Errorf("翻译结果解析失败: %w", err)
	}

	paper.TitleTranslated = tr.TitleZh
	paper.AbstractTranslated = tr.AbstractZh
	if !hasAbstract {
		paper.AbstractTranslated = NoAbstractPlaceholder
	}
	paper.Keywords = tr.Keywords
	paper.RelevanceSummary = tr.RelevanceSummary
	return nil
}

// ProcessPapers 用固定大小的 worker 池并发翻译，结果按输入顺序写回。
// 单篇失败不会中断整体，失败的论文保留英文原文。
// onDone 在每篇完成（无论成败）后回调，done 是已完成数。
func (t *Translator) ProcessPapers(ctx context.Context, query string, papers []*models.Paper, onDone func(done, total int, title string)) {
	if len(papers) == 0 {
		return
	}

	total := len(papers)
	jobs := make(chan int)

	var mu sync.Mutex
	done := 0

	var wg sync.WaitGroup
	workers := t.workers
	if workers > total {
		workers = total
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := papers[i]
				if err := t.TranslatePaper(ctx, query, p); err != nil {
					logger.Warn("[Translate] 第 %d 篇处理失败: %v", i+1, err)
				}

				mu.Lock()
				done++
				current := done
				mu.Unlock()

				if onDone != nil {
					onDone(current, total, p.Title)
				}
			}
		}()
	}

	for i := range papers {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseTranslation 清理 markdown 包裹后解析 JSON，失败时用正则抢救一次
func parseTranslation(content string) (*translation, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var tr translation
	if err := json.Unmarshal([]byte(content), &tr); err != nil {
		m := jsonObjectPattern.FindString(content)
		if m == "" {
			return nil, fmt.Errorf("JSON 解析失败: %w", err)
		}
		if err := json.Unmarshal([]byte(m), &tr); err != nil {
			return nil, fmt.Errorf("JSON 解析失败: %w", err)
		}
	}

	if tr.TitleZh == "" && tr.AbstractZh == "" {
		return nil, fmt.Errorf("翻译结果为空")
	}
	return &tr, nil
}

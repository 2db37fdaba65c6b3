package llm

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"
	"sync"

	"PaperScope/pkg/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Refiner 把论文摘要改写成更短的通俗中文。可以配置独立于主流水线的模型。
// 同一篇摘要的结果在进程内缓存，重复点击不再烧 token。
type Refiner struct {
	model model.BaseChatModel
	cache sync.Map // md5(id:abstract) -> string
}

func NewRefiner(m model.BaseChatModel) *Refiner {
	return &Refiner{model: m}
}

const refineSystemPrompt = `你是一个学术科普助手。用户会给你一篇论文的标题和摘要。
请用通俗的中文把摘要改写成 2-4 句话，说清楚这篇论文做了什么、怎么做的、结果如何。

输出要求：
- 只输出改写后的文字，不要输出标题、解释或任何其他内容
- 避免直译腔，保留必要的专业术语英文原文`

// RefineAbstract 返回改写后的摘要。LLM 不可用、调用失败或输出为空时
// 原样返回输入摘要，刷新页面不应因此失败。
func (r *Refiner) RefineAbstract(ctx context.Context, paperID, title, abstract string) string {
	if strings.TrimSpace(abstract) == "" {
		return abstract
	}
	if r == nil || r.model == nil {
		return abstract
	}

	key := fmt.Sprintf("%x", md5.Sum([]byte(paperID+":"+abstract)))
	if v, ok := r.cache.Load(key); ok {
		logger.Debug("[Refine] 命中缓存: %s", paperID)
		return v.(string)
	}

	messages := []*schema.Message{
		{
			Role:    schema.System,
			Content: refineSystemPrompt,
		},
		{
			Role:    schema.User,
			Content: fmt.Sprintf("标题: %s\n\n摘要: %s", title, abstract),
		},
	}

	resp, err := r.model.Generate(ctx, messages)
	if err != nil {
		logger.Warn("[Refine] LLM 改写失败，返回原文: %v", err)
		return abstract
	}

	refined := cleanRefined(resp)
	if refined == "" {
		return abstract
	}

	r.cache.Store(key, refined)
	return refined
}

func cleanRefined(resp *schema.Message) string {
	if resp == nil {
		return ""
	}
	out := strings.TrimSpace(resp.Content)
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

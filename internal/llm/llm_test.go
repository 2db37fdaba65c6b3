package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"PaperScope/internal/models"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// fakeChatModel 测试用的假模型，按固定内容应答或返回错误
type fakeChatModel struct {
	reply string
	err   error
	calls int32

	mu        sync.Mutex
	lastInput []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.lastInput = input
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported in tests")
}

func (f *fakeChatModel) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

func (f *fakeChatModel) lastMessages() []*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastInput
}

func makePapers(specs ...[2]string) []*models.Paper {
	papers := make([]*models.Paper, 0, len(specs))
	for _, s := range specs {
		papers = append(papers, &models.Paper{
			Source:   s[0],
			SourceID: s[1],
			Title:    "paper " + s[1],
			Abstract: "abstract of " + s[1],
		})
	}
	return papers
}

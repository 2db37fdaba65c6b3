package search

import (
	"context"
	"fmt"
	"time"

	"PaperScope/config"
	"PaperScope/db"
	"PaperScope/internal/core"
	"PaperScope/internal/llm"
	"PaperScope/internal/models"
	"PaperScope/internal/platform"
	"PaperScope/internal/platform/arxiv"
	"PaperScope/pkg/logger"

	"github.com/google/uuid"
)

// Notifier 流水线进度回调，SSE 处理器实现它把进度推给前端。
// Status 的 progress 取值 0-100；PaperDone 在每篇翻译完成后触发。
type Notifier interface {
	Status(message string, progress int)
	PaperDone(current, total int, title string)
}

// Request 一次搜索的请求参数
type Request struct {
	Query      string   `json:"query"`
	Engines    []string `json:"engines"`
	Categories []string `json:"categories"`
	DateFrom   string   `json:"date_from"`
	DateTo     string   `json:"date_to"`
	MaxResults int      `json:"max_results"` // 筛选后保留上限，0 表示用配置默认值
}

// Result 流水线的最终产出
type Result struct {
	HistoryID string          `json:"history_id"`
	Query     string          `json:"query"`
	Engines   []string        `json:"engines"`
	Total     int             `json:"total"` // 合并去重后、筛选前的数量
	Papers    []*models.Paper `json:"papers"`
}

// Service 搜索流水线：多引擎抓取 → 合并去重 → LLM 筛选 → 并发翻译 → 历史落库
type Service struct {
	cfg         *config.AppConfig
	platformCfg map[string]platform.Config
	filter      *llm.Filter
	translator  *llm.Translator
	store       db.HistoryStorage
}

func NewService(cfg *config.AppConfig, filter *llm.Filter, translator *llm.Translator, store db.HistoryStorage) *Service {
	return &Service{
		cfg: cfg,
		platformCfg: map[string]platform.Config{
			"arxiv":            &cfg.Arxiv,
			"semantic_scholar": &cfg.SemanticScholar,
			"pubmed":           &cfg.PubMed,
		},
		filter:     filter,
		translator: translator,
		store:      store,
	}
}

// Engines 返回可用引擎名列表
func (s *Service) Engines() []string {
	return core.List()
}

// Run 执行完整流水线。notifier 可以为 nil（不推进度）。
func (s *Service) Run(ctx context.Context, req Request, notifier Notifier) (*Result, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("检索词不能为空")
	}
	if len(req.Engines) == 0 {
		req.Engines = []string{arxiv.Name}
	}
	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > s.cfg.Search.MaxFilteredResults {
		maxResults = s.cfg.Search.MaxFilteredResults
	}

	notify := func(msg string, progress int) {
		if notifier != nil {
			notifier.Status(msg, progress)
		}
	}

	notify(fmt.Sprintf("开始搜索: %s", req.Query), 0)

	papers := s.searchEngines(ctx, req, notify)
	total := len(papers)
	if total == 0 {
		notify("没有找到相关论文", 100)
		return s.finish(ctx, req, nil, 0)
	}

	notify(fmt.Sprintf("共获取 %d 篇论文，正在筛选...", total), 10)

	filtered := s.filter.FilterPapers(ctx, req.Query, papers, maxResults)

	notify(fmt.Sprintf("筛选出 %d 篇，正在翻译和解读...", len(filtered)), 30)

	s.translator.ProcessPapers(ctx, req.Query, filtered, func(done, totalPapers int, title string) {
		if notifier != nil {
			notifier.PaperDone(done, totalPapers, title)
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.finish(ctx, req, filtered, total)
}

// searchEngines 依次调用各引擎，单个引擎失败只记日志不中断。
// 引擎之间按配置 sleep，避免触发各家的限流。
func (s *Service) searchEngines(ctx context.Context, req Request, notify func(string, int)) []*models.Paper {
	q := platform.Query{
		Keywords:   []string{req.Query},
		Categories: req.Categories,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		Limit:      s.cfg.Search.MaxResultsPerEngine,
		SortBy:     platform.SortRelevance,
	}

	var merged []*models.Paper
	seen := map[string]bool{}

	for i, name := range req.Engines {
		if i > 0 && s.cfg.Search.EngineDelay > 0 {
			select {
			case <-time.After(time.Duration(s.cfg.Search.EngineDelay) * time.Second):
			case <-ctx.Done():
				return merged
			}
		}

		p, err := s.buildPlatform(name)
		if err != nil {
			logger.Warn("[Search] 引擎 %s 不可用: %v", name, err)
			notify(fmt.Sprintf("引擎 %s 不可用，已跳过", name), 5)
			continue
		}

		notify(fmt.Sprintf("正在搜索 %s ...", name), 5)

		result, err := p.Search(ctx, q)
		if err != nil {
			logger.Warn("[Search] 引擎 %s 搜索失败: %v", name, err)
			notify(fmt.Sprintf("引擎 %s 搜索失败，已跳过", name), 5)
			continue
		}

		for _, paper := range result.Papers {
			key := paper.Source + ":" + paper.SourceID
			if paper.SourceID == "" {
				key = paper.URL
			}
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, paper)
		}
	}

	return merged
}

func (s *Service) buildPlatform(name string) (platform.Platform, error) {
	provider, ok := core.Get(name)
	if !ok {
		return nil, fmt.Errorf("未注册的引擎: %s", name)
	}
	cfg, ok := s.platformCfg[name]
	if !ok {
		cfg = provider.DefaultConfig()
	}
	return provider.New(cfg)
}

// finish 写历史并组装返回值
func (s *Service) finish(ctx context.Context, req Request, papers []*models.Paper, total int) (*Result, error) {
	recordType := models.HistoryMultiEngine
	if len(req.Engines) == 1 && req.Engines[0] == arxiv.Name {
		recordType = models.HistoryArxivSearch
	}

	record := &models.HistoryRecord{
		ID:        uuid.NewString(),
		Type:      recordType,
		Timestamp: time.Now(),
		Params: map[string]interface{}{
			"query":      req.Query,
			"engines":    req.Engines,
			"categories": req.Categories,
			"date_from":  req.DateFrom,
			"date_to":    req.DateTo,
		},
		ResultSummary: map[string]interface{}{
			"total":    total,
			"returned": len(papers),
		},
		Papers: papers,
	}

	if s.store != nil {
		if err := s.store.Save(ctx, record); err != nil {
			// 历史写失败不影响本次结果
			logger.Warn("[Search] 保存历史失败: %v", err)
		}
	}

	return &Result{
		HistoryID: record.ID,
		Query:     req.Query,
		Engines:   req.Engines,
		Total:     total,
		Papers:    papers,
	}, nil
}

// LatestPapers 拉取 arXiv 某个大类近 days 天的新论文并翻译。
// days <= 0 时不限制时间窗口。
func (s *Service) LatestPapers(ctx context.Context, category string, days, limit int) (*Result, error) {
	if category == "" {
		category = s.cfg.Search.DefaultCategory
	}
	if _, ok := config.AvailableCategories[category]; !ok {
		return nil, fmt.Errorf("不支持的分类: %s", category)
	}
	if limit <= 0 || limit > s.cfg.Search.MaxResultsPerEngine {
		limit = s.cfg.Search.MaxFilteredResults
	}

	dateFrom := ""
	if days > 0 {
		dateFrom = time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	}

	p, err := s.buildPlatform(arxiv.Name)
	if err != nil {
		return nil, err
	}

	result, err := p.Search(ctx, platform.Query{
		Categories: []string{category},
		DateFrom:   dateFrom,
		Limit:      limit,
		SortBy:     platform.SortSubmitted,
	})
	if err != nil {
		return nil, fmt.Errorf("获取最新论文失败: %w", err)
	}

	s.translator.ProcessPapers(ctx, config.AvailableCategories[category]+"领域的最新进展", result.Papers, nil)

	record := &models.HistoryRecord{
		ID:        uuid.NewString(),
		Type:      models.HistoryLatestPapers,
		Timestamp: time.Now(),
		Params: map[string]interface{}{
			"category": category,
			"days":     days,
			"limit":    limit,
		},
		ResultSummary: map[string]interface{}{
			"total":    result.Total,
			"returned": len(result.Papers),
		},
		Papers: result.Papers,
	}
	if s.store != nil {
		if err := s.store.Save(ctx, record); err != nil {
			logger.Warn("[Search] 保存历史失败: %v", err)
		}
	}

	return &Result{
		HistoryID: record.ID,
		Engines:   []string{arxiv.Name},
		Total:     result.Total,
		Papers:    result.Papers,
	}, nil
}

package pubmed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"PaperScope/internal/core"
	"PaperScope/internal/platform"
	"PaperScope/pkg/logger"
)

type Adapter struct {
	config     *Config
	httpClient *http.Client
}

func NewAdapter(config *Config) (*Adapter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := core.NewHTTPClient(config.Timeout, config.Proxy)
	return &Adapter{config: config, httpClient: client}, nil
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) GetConfig() platform.Config { return a.config }

// Search 分两步：esearch 取 uid 列表，efetch 取文章详情
func (a *Adapter) Search(ctx context.Context, q platform.Query) (platform.Result, error) {
	term := buildTerm(q)
	if term == "" {
		return platform.Result{}, fmt.Errorf("pubmed 搜索需要关键词")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	uids, total, err := a.esearch(ctx, term, limit)
	if err != nil {
		return platform.Result{}, fmt.Errorf("pubmed esearch 失败: %w", err)
	}
	if len(uids) == 0 {
		return platform.Result{Total: total}, nil
	}

	logger.Debug("[PubMed] esearch 命中 %d 条，获取前 %d 篇详情", total, len(uids))

	body, err := a.efetch(ctx, uids)
	if err != nil {
		return platform.Result{}, fmt.Errorf("pubmed efetch 失败: %w", err)
	}

	papers, err := ParseEfetchResponse(body)
	if err != nil {
		return platform.Result{}, fmt.Errorf("pubmed 响应解析失败: %w", err)
	}

	logger.Info("[PubMed] 搜索完成，返回 %d 篇论文", len(papers))
	return platform.Result{Total: total, Papers: papers}, nil
}

func (a *Adapter) esearch(ctx context.Context, term string, limit int) ([]string, int, error) {
	params := url.Values{}
	params.Add("db", "pubmed")
	params.Add("term", term)
	params.Add("retmax", fmt.Sprintf("%d", limit))
	params.Add("retmode", "json")
	params.Add("sort", "relevance")
	if a.config.APIKey != "" {
		params.Add("api_key", a.config.APIKey)
	}

	body, err := a.get(ctx, a.config.APIBase+"/esearch.fcgi?"+params.Encode())
	if err != nil {
		return nil, 0, err
	}
	return ParseESearchResponse(body)
}

func (a *Adapter) efetch(ctx context.Context, uids []string) ([]byte, error) {
	params := url.Values{}
	params.Add("db", "pubmed")
	params.Add("id", strings.Join(uids, ","))
	params.Add("retmode", "xml")
	if a.config.APIKey != "" {
		params.Add("api_key", a.config.APIKey)
	}

	return a.get(ctx, a.config.APIBase+"/efetch.fcgi?"+params.Encode())
}

func (a *Adapter) get(ctx context.Context, apiURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// buildTerm 拼接 esearch 查询串，日期范围用 [dp] 过滤
func buildTerm(q platform.Query) string {
	keywords := strings.TrimSpace(strings.Join(q.Keywords, " "))
	if keywords == "" {
		return ""
	}

	term := keywords
	from := strings.ReplaceAll(q.DateFrom, "-", "/")
	to := strings.ReplaceAll(q.DateTo, "-", "/")
	switch {
	case from != "" && to != "":
		term += fmt.Sprintf(" AND (%q[dp] : %q[dp])", from, to)
	case from != "":
		term += fmt.Sprintf(" AND (%q[dp] : \"3000\"[dp])", from)
	case to != "":
		term += fmt.Sprintf(" AND (\"1800\"[dp] : %q[dp])", to)
	}
	return term
}

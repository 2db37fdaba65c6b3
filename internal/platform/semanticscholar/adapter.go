package semanticscholar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PaperScope/internal/core"
	"PaperScope/internal/platform"
	"PaperScope/pkg/logger"
)

// searchFields 请求 graph API 时要求返回的字段
const searchFields = "paperId,title,abstract,year,publicationDate,authors,citationCount,referenceCount,url,venue,fieldsOfStudy,openAccessPdf"

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

func (a *Adapter) Search(ctx context.Context, q platform.Query) (platform.Result, error) {
	query := strings.TrimSpace(strings.Join(q.Keywords, " "))
	if query == "" {
		return platform.Result{}, fmt.Errorf("semantic scholar 搜索需要关键词")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	params := url.Values{}
	params.Add("query", query)
	params.Add("limit", fmt.Sprintf("%d", limit))
	params.Add("fields", searchFields)

	// 日期过滤只能按年，取两端年份
	if yearRange := buildYearRange(q.DateFrom, q.DateTo); yearRange != "" {
		params.Add("year", yearRange)
	}

	apiURL := a.config.APIBase + "/paper/search?" + params.Encode()
	logger.Debug("[SemanticScholar] 请求 API: query=%q, limit=%d", query, limit)

	body, err := a.request(ctx, apiURL)
	if err != nil {
		return platform.Result{}, fmt.Errorf("semantic scholar 搜索失败: %w", err)
	}

	papers, total, err := ParseSearchResponse(body)
	if err != nil {
		return platform.Result{}, fmt.Errorf("semantic scholar 响应解析失败: %w", err)
	}

	logger.Info("[SemanticScholar] 搜索完成，返回 %d 篇论文", len(papers))
	return platform.Result{Total: total, Papers: papers}, nil
}

// request 执行一次 GET 请求；命中速率限制（429）时等待 5 秒重试一次
func (a *Adapter) request(ctx context.Context, apiURL string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if a.config.APIKey != "" {
			req.Header.Set("x-api-key", a.config.APIKey)
		}

		resp, err := a.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			logger.Warn("[SemanticScholar] 触发速率限制，等待 5s 后重试")
			select {
			case <-time.After(5 * time.Second):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	}
}

func buildYearRange(from, to string) string {
	fromYear := yearOf(from)
	toYear := yearOf(to)
	switch {
	case fromYear != "" && toYear != "":
		return fromYear + "-" + toYear
	case fromYear != "":
		return fromYear + "-"
	case toYear != "":
		return "-" + toYear
	}
	return ""
}

func yearOf(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d", t.Year())
}

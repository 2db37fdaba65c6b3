package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PaperScope/internal/core"
	"PaperScope/internal/models"
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

	return &Adapter{
		config:     config,
		httpClient: client,
	}, nil
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) GetConfig() platform.Config { return a.config }

func (a *Adapter) Search(ctx context.Context, q platform.Query) (platform.Result, error) {
	if a.config.UseAPI {
		return a.searchViaAPI(ctx, q)
	}
	return a.searchViaWeb(ctx, q)
}

// searchViaAPI 使用官方 Atom API 搜索（超出单页上限时分页）
func (a *Adapter) searchViaAPI(ctx context.Context, q platform.Query) (platform.Result, error) {
	searchQuery := a.buildAPIQuery(q)

	targetLimit := q.Limit
	if targetLimit <= 0 {
		targetLimit = 50
	}
	pageSize := a.config.Step
	if pageSize > 200 {
		pageSize = 200 // arXiv API 单次最大 200
	}

	sortBy := "submittedDate"
	if q.SortBy == platform.SortRelevance {
		sortBy = "relevance"
	}

	var allPapers []*models.Paper
	totalFound := 0
	start := 0

	for {
		remaining := targetLimit - len(allPapers)
		if remaining <= 0 {
			break
		}
		currentPageSize := pageSize
		if remaining < pageSize {
			currentPageSize = remaining
		}

		params := url.Values{}
		params.Add("search_query", searchQuery)
		params.Add("start", fmt.Sprintf("%d", start))
		params.Add("max_results", fmt.Sprintf("%d", currentPageSize))
		params.Add("sortBy", sortBy)
		params.Add("sortOrder", "descending")

		apiURL := a.config.APIBase + "?" + params.Encode()
		logger.Debug("[arXiv] API 请求: start=%d, max=%d, sort=%s", start, currentPageSize, sortBy)

		content, err := a.request(ctx, apiURL)
		if err != nil {
			return platform.Result{}, fmt.Errorf("API request failed: %w", err)
		}

		papers, total, err := ParseAtomFeed(content)
		if err != nil {
			return platform.Result{}, fmt.Errorf("failed to parse API response: %w", err)
		}

		if totalFound == 0 {
			totalFound = total
		}

		allPapers = append(allPapers, papers...)

		if len(papers) == 0 || len(allPapers) >= totalFound {
			break
		}

		start += len(papers)
		time.Sleep(1000 * time.Millisecond) // 防止触发 429
	}

	if len(allPapers) > targetLimit {
		allPapers = allPapers[:targetLimit]
	}

	logger.Info("[arXiv] 搜索完成，共找到 %d 篇，返回 %d 篇", totalFound, len(allPapers))
	return platform.Result{Total: totalFound, Papers: allPapers}, nil
}

// searchViaWeb 使用网页高级搜索（备用通道，API 不可用时在配置里切换）
func (a *Adapter) searchViaWeb(ctx context.Context, q platform.Query) (platform.Result, error) {
	webURL := a.buildWebQuery(q)

	content, err := a.request(ctx, webURL)
	if err != nil {
		return platform.Result{}, fmt.Errorf("web request failed: %w", err)
	}

	papers, totalFound, err := ParseSearchHTML(content)
	if err != nil {
		return platform.Result{}, fmt.Errorf("failed to parse web response: %w", err)
	}

	logger.Info("[arXiv] Web 搜索共找到 %d 篇论文，首页返回 %d 篇", totalFound, len(papers))

	if q.Limit > 0 && len(papers) > q.Limit {
		papers = papers[:q.Limit]
	}

	return platform.Result{Total: totalFound, Papers: papers}, nil
}

// buildAPIQuery 构建 API 查询字符串
// 形如: cat:cs.* AND all:"deep learning" AND submittedDate:[... TO ...]
func (a *Adapter) buildAPIQuery(q platform.Query) string {
	var parts []string

	for _, cat := range q.Categories {
		cat = strings.TrimSpace(cat)
		if cat == "" {
			continue
		}
		// 只给到一级分类时扩展为通配，如 cs -> cs.*
		if !strings.Contains(cat, ".") {
			cat += ".*"
		}
		parts = append(parts, fmt.Sprintf("cat:%s", cat))
	}

	for _, kw := range q.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(kw, " ") {
			kw = fmt.Sprintf(`"%s"`, kw)
		}
		parts = append(parts, fmt.Sprintf("all:%s", kw))
	}

	if len(parts) == 0 {
		logger.Warn("[arXiv] 没有关键词和分类，回退到 cat:cs.*")
		return "cat:cs.*"
	}

	query := strings.Join(parts, " AND ")

	if q.DateFrom != "" || q.DateTo != "" {
		from := "*"
		to := "*"
		if q.DateFrom != "" {
			if t, err := time.Parse("2006-01-02", q.DateFrom); err == nil {
				from = t.Format("200601021504")
			}
		}
		if q.DateTo != "" {
			if t, err := time.Parse("2006-01-02", q.DateTo); err == nil {
				to = t.Format("200601021504")
			}
		}
		query += fmt.Sprintf(" AND submittedDate:[%s TO %s]", from, to)
	}

	return query
}

func (a *Adapter) buildWebQuery(q platform.Query) string {
	params := url.Values{}
	params.Add("advanced", "1")

	termIndex := 0

	// 关键词：OR 连接，在所有字段中搜索
	for _, kw := range q.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(kw, " ") && !(strings.HasPrefix(kw, `"`) && strings.HasSuffix(kw, `"`)) {
			kw = fmt.Sprintf(`"%s"`, kw)
		}
		if termIndex > 0 {
			params.Add(fmt.Sprintf("terms-%d-operator", termIndex), "OR")
		}
		params.Add(fmt.Sprintf("terms-%d-term", termIndex), kw)
		params.Add(fmt.Sprintf("terms-%d-field", termIndex), "all")
		termIndex++
	}

	// 类别：与关键词块 AND，内部 OR
	for i, cat := range q.Categories {
		cat = strings.TrimSpace(cat)
		if cat == "" {
			continue
		}
		operator := "AND"
		if i > 0 {
			operator = "OR"
		}
		if termIndex > 0 {
			params.Add(fmt.Sprintf("terms-%d-operator", termIndex), operator)
		}
		params.Add(fmt.Sprintf("terms-%d-term", termIndex), cat)
		params.Add(fmt.Sprintf("terms-%d-field", termIndex), "cross_list_category")
		termIndex++
	}

	params.Add("classification-include_cross_list", "include")
	params.Add("abstracts", "show")

	pageSize := q.Limit
	if pageSize == 0 || pageSize < 50 {
		pageSize = 50 // arXiv web 最小 50
	}
	params.Add("size", fmt.Sprintf("%d", pageSize))
	params.Add("order", "-announced_date_first")

	if q.DateFrom != "" || q.DateTo != "" {
		params.Add("date-filter_by", "date_range")
		if q.DateFrom != "" {
			if dateFrom, err := time.Parse("2006-01-02", q.DateFrom); err == nil {
				params.Add("date-from_date", dateFrom.Format("2006-01-02"))
			}
		}
		if q.DateTo != "" {
			if dateTo, err := time.Parse("2006-01-02", q.DateTo); err == nil {
				params.Add("date-to_date", dateTo.Format("2006-01-02"))
			}
		}
	}

	webURL := a.config.WebBase + "?" + params.Encode()
	logger.Debug("[arXiv] 构建的 URL: %s", webURL)
	return webURL
}

func (a *Adapter) request(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36")

		resp, err := a.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < 2 {
				time.Sleep(time.Duration(1<<attempt) * time.Second)
				continue
			}
			break
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("HTTP error: %d", resp.StatusCode)
			if attempt < 2 {
				time.Sleep(time.Duration(1<<attempt) * time.Second)
				continue
			}
			break
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}
		return string(body), nil
	}
	return "", lastErr
}

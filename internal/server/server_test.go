package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PaperScope/config"
	"PaperScope/db/sqlite"
	"PaperScope/internal/llm"
	"PaperScope/internal/models"
	"PaperScope/internal/search"
)

const arxivAtomResponse = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
  <opensearch:totalResults>1</opensearch:totalResults>
  <entry>
    <id>http://arxiv.org/abs/2408.11111v1</id>
    <title>Stub Paper</title>
    <summary>Stub abstract.</summary>
    <published>2024-08-20T00:00:00Z</published>
    <author><name>Alice</name></author>
    <category term="cs.CL"/>
  </entry>
</feed>`

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.SQLiteDB) {
	t.Helper()

	arxivStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(arxivAtomResponse))
	}))
	t.Cleanup(arxivStub.Close)

	cfg := &config.AppConfig{Env: "dev"}
	cfg.Search.MaxResultsPerEngine = 50
	cfg.Search.MaxFilteredResults = 20
	cfg.Search.TranslateWorkers = 2
	cfg.Search.DefaultCategory = "cs"
	cfg.Arxiv.UseAPI = true
	cfg.Arxiv.APIBase = arxivStub.URL
	cfg.Arxiv.WebBase = "https://arxiv.org/search/advanced"
	cfg.Arxiv.Step = 100
	cfg.Arxiv.Timeout = 5

	store, err := sqlite.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteDB() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := search.NewService(cfg, llm.NewFilter(nil), llm.NewTranslator(nil, 2), store)
	srv := New(cfg, svc, llm.NewRefiner(nil), store)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func TestEnginesEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/engines")
	if err != nil {
		t.Fatalf("GET /api/engines failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Engines []string `json:"engines"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Engines) < 3 {
		t.Errorf("engines = %v, expected at least 3", body.Engines)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/categories")
	if err != nil {
		t.Fatalf("GET /api/categories failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Categories []map[string]string `json:"categories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Categories) == 0 {
		t.Error("no categories returned")
	}
}

func TestMultiSearchSSE(t *testing.T) {
	ts, store := newTestServer(t)

	payload := `{"query": "transformer", "engines": ["arxiv"]}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/search/multi", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/search/multi failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q, expected text/event-stream", ct)
	}

	var events []map[string]interface{}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev map[string]interface{}
		if err := json.Unmarshal([]byte(line[len("data: "):]), &ev); err != nil {
			t.Fatalf("bad SSE frame %q: %v", line, err)
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		t.Fatal("no SSE events received")
	}
	// 第一帧是 progress 0 的 status，前端靠这个字段初始化进度条
	if _, ok := events[0]["progress"]; !ok {
		t.Error("first event missing progress field")
	}
	last := events[len(events)-1]
	if last["type"] != "complete" {
		t.Fatalf("last event type = %v, expected complete", last["type"])
	}

	result, _ := last["result"].(map[string]interface{})
	if result == nil {
		t.Fatal("complete event has no result")
	}
	papers, _ := result["papers"].([]interface{})
	if len(papers) != 1 {
		t.Errorf("len(papers) = %d, expected 1", len(papers))
	}

	// 流水线结束后历史应当落库
	historyID, _ := result["history_id"].(string)
	if historyID == "" {
		t.Fatal("history_id is empty")
	}
	record, err := store.Get(t.Context(), historyID)
	if err != nil {
		t.Fatalf("history record not saved: %v", err)
	}
	if record.Type != models.HistoryArxivSearch {
		t.Errorf("record.Type = %q, expected %q", record.Type, models.HistoryArxivSearch)
	}
}

func TestMultiSearchJSON(t *testing.T) {
	ts, _ := newTestServer(t)

	// 不带 Accept: text/event-stream 时同步返回单个 JSON
	payload := `{"query": "transformer", "engines": ["arxiv"]}`
	resp, err := http.Post(ts.URL+"/api/search/multi", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, expected application/json", ct)
	}

	var result struct {
		Total     int                      `json:"total"`
		HistoryID string                   `json:"history_id"`
		Papers    []map[string]interface{} `json:"papers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if result.Total != 1 || len(result.Papers) != 1 {
		t.Errorf("total = %d, papers = %d", result.Total, len(result.Papers))
	}
	if result.HistoryID == "" {
		t.Error("history_id is empty")
	}
}

func TestMultiSearchEmptyQuery(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/search/multi", "application/json", strings.NewReader(`{"query": ""}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", resp.StatusCode)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	ts, store := newTestServer(t)

	record := &models.HistoryRecord{
		ID:        "hist-1",
		Type:      models.HistoryMultiEngine,
		Timestamp: time.Now(),
		Params:    map[string]interface{}{"query": "q"},
		Papers:    []*models.Paper{{Source: "arxiv", SourceID: "2408.11111", Title: "T"}},
	}
	if err := store.Save(t.Context(), record); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	resp, err := http.Get(ts.URL + "/api/history?type=multi_engine")
	if err != nil {
		t.Fatalf("GET /api/history failed: %v", err)
	}
	defer resp.Body.Close()

	var list struct {
		Records []map[string]interface{} `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(list.Records) != 1 {
		t.Fatalf("len(records) = %d, expected 1", len(list.Records))
	}
	// 列表项不带论文快照
	if _, ok := list.Records[0]["papers"]; ok {
		t.Error("list item should not carry papers")
	}

	detail, err := http.Get(ts.URL + "/api/history/hist-1")
	if err != nil {
		t.Fatalf("GET /api/history/:id failed: %v", err)
	}
	defer detail.Body.Close()
	if detail.StatusCode != http.StatusOK {
		t.Errorf("status = %d", detail.StatusCode)
	}

	missing, err := http.Get(ts.URL + "/api/history/nope")
	if err != nil {
		t.Fatalf("GET missing history failed: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", missing.StatusCode)
	}
}

func TestExportCSV(t *testing.T) {
	ts, _ := newTestServer(t)

	payload := map[string]interface{}{
		"format": "csv",
		"papers": []map[string]interface{}{
			{"source": "arxiv", "paper_id": "2408.11111", "title": "T", "authors": []string{"Alice"}},
		},
	}
	body, _ := json.Marshal(payload)

	resp, err := http.Post(ts.URL+"/api/export", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/export failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "2408.11111") {
		t.Error("exported CSV missing paper id")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	ts, _ := newTestServer(t)

	payload := `{"format": "xlsx", "papers": [{"source": "arxiv", "paper_id": "1", "title": "T"}]}`
	resp, err := http.Post(ts.URL+"/api/export", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", resp.StatusCode)
	}
}

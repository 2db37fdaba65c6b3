package server

import (
	"net/http"
	"strings"

	"PaperScope/internal/platform/arxiv"
	"PaperScope/internal/search"
	"PaperScope/pkg/logger"

	"github.com/gin-gonic/gin"
)

// handleArxivSearch POST /api/search
// 只搜 arXiv 的快捷入口，响应为 SSE 流
func (s *Server) handleArxivSearch(c *gin.Context) {
	var req search.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}
	req.Engines = []string{arxiv.Name}

	s.runPipeline(c, req)
}

// handleMultiSearch POST /api/search/multi
// 多引擎聚合搜索。客户端 Accept 带 text/event-stream 时推 SSE 进度，
// 否则同步返回单个 JSON。
func (s *Server) handleMultiSearch(c *gin.Context) {
	var req search.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		s.runPipeline(c, req)
		return
	}

	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "检索词不能为空"})
		return
	}

	result, err := s.svc.Run(c.Request.Context(), req, nil)
	if err != nil {
		logger.Error("[Server] 搜索流水线失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) runPipeline(c *gin.Context, req search.Request) {
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "检索词不能为空"})
		return
	}

	stream := newSSEStream(c)

	result, err := s.svc.Run(c.Request.Context(), req, stream)
	if err != nil {
		logger.Error("[Server] 搜索流水线失败: %v", err)
		stream.Error(err.Error())
		return
	}

	stream.Complete(result)
}

// handleLatestPapers GET /api/papers/latest?category=cs&days=7&limit=20
func (s *Server) handleLatestPapers(c *gin.Context) {
	category := c.Query("category")
	days := intQuery(c, "days", 7)
	limit := intQuery(c, "limit", 0)

	result, err := s.svc.LatestPapers(c.Request.Context(), category, days, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleEngines GET /api/engines
func (s *Server) handleEngines(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"engines": s.svc.Engines()})
}

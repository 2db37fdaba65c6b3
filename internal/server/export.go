package server

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"PaperScope/config"
	"PaperScope/internal/core/export"
	"PaperScope/internal/models"

	"github.com/gin-gonic/gin"
)

type exportRequest struct {
	Format string          `json:"format"` // csv 或 json，默认 json
	Papers []*models.Paper `json:"papers"`
}

// handleExport POST /api/export
// 把前端勾选的论文导出为文件下载
func (s *Server) handleExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}
	if len(req.Papers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "没有可导出的论文"})
		return
	}

	exporter, err := export.New(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("papers-%s.%s", time.Now().Format("20060102-150405"), exporter.FileExt())
	c.Header("Content-Type", exporter.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := exporter.Export(c.Writer, req.Papers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
}

// handleCategories GET /api/categories
func (s *Server) handleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": categoryList()})
}

func categoryList() []gin.H {
	keys := make([]string, 0, len(config.AvailableCategories))
	for k := range config.AvailableCategories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]gin.H, 0, len(keys))
	for _, k := range keys {
		out = append(out, gin.H{"id": k, "name": config.AvailableCategories[k]})
	}
	return out
}

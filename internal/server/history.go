package server

import (
	"errors"
	"net/http"
	"strconv"

	"PaperScope/db"
	"PaperScope/internal/models"

	"github.com/gin-gonic/gin"
)

// handleHistoryList GET /api/history?type=multi_engine&limit=50
func (s *Server) handleHistoryList(c *gin.Context) {
	recordType := c.Query("type")
	if recordType != "" && !models.ValidHistoryType(recordType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的历史类型: " + recordType})
		return
	}

	limit := intQuery(c, "limit", 50)

	records, err := s.store.List(c.Request.Context(), recordType, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 列表页不需要整份论文快照
	type listItem struct {
		ID            string                 `json:"id"`
		Type          string                 `json:"type"`
		Timestamp     string                 `json:"timestamp"`
		Params        map[string]interface{} `json:"params"`
		ResultSummary map[string]interface{} `json:"result_summary"`
	}

	items := make([]listItem, 0, len(records))
	for _, r := range records {
		items = append(items, listItem{
			ID:            r.ID,
			Type:          r.Type,
			Timestamp:     r.Timestamp.Format("2006-01-02 15:04:05"),
			Params:        r.Params,
			ResultSummary: r.ResultSummary,
		})
	}

	c.JSON(http.StatusOK, gin.H{"records": items})
}

// handleHistoryGet GET /api/history/:id
func (s *Server) handleHistoryGet(c *gin.Context) {
	record, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "历史记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

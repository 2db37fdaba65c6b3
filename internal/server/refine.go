package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type refineRequest struct {
	PaperID  string `json:"paper_id"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// handleRefine POST /api/refine
// 把摘要改写成更短的通俗中文；失败时返回原文，前端无需特判
func (s *Server) handleRefine(c *gin.Context) {
	var req refineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	refined := s.refiner.RefineAbstract(c.Request.Context(), req.PaperID, req.Title, req.Abstract)
	c.JSON(http.StatusOK, gin.H{"refined_abstract": refined})
}

package server

import (
	"fmt"
	"net/http"

	"PaperScope/config"
	"PaperScope/db"
	"PaperScope/internal/llm"
	"PaperScope/internal/search"
	"PaperScope/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Server HTTP 服务，承载搜索 API、SSE 进度推送和静态前端
type Server struct {
	cfg     *config.AppConfig
	engine  *gin.Engine
	svc     *search.Service
	refiner *llm.Refiner
	store   db.HistoryStorage
}

func New(cfg *config.AppConfig, svc *search.Service, refiner *llm.Refiner, store db.HistoryStorage) *Server {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		engine:  gin.New(),
		svc:     svc,
		refiner: refiner,
		store:   store,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestLogger())
	s.engine.Use(cors())

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	{
		api.POST("/search", s.handleArxivSearch)
		api.POST("/search/multi", s.handleMultiSearch)
		api.GET("/papers/latest", s.handleLatestPapers)
		api.POST("/refine", s.handleRefine)
		api.GET("/history", s.handleHistoryList)
		api.GET("/history/:id", s.handleHistoryGet)
		api.POST("/export", s.handleExport)
		api.GET("/engines", s.handleEngines)
		api.GET("/categories", s.handleCategories)
	}

	// 前端静态页面
	s.engine.Static("/static", "./web")
	s.engine.GET("/", func(c *gin.Context) {
		c.File("./web/index.html")
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	logger.Info("[Server] 监听 %s", addr)
	return s.engine.Run(addr)
}

// Handler 暴露底层 http.Handler，测试用
func (s *Server) Handler() http.Handler {
	return s.engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("[Server] %s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// sseEvent 推给前端的一帧，type 取值 status/progress/complete/error
type sseEvent struct {
	Type     string      `json:"type"`
	Message  string      `json:"message,omitempty"`
	Progress int         `json:"progress"`
	Current  int         `json:"current,omitempty"`
	Total    int         `json:"total,omitempty"`
	Title    string      `json:"title,omitempty"`
	Result   interface{} `json:"result,omitempty"`
}

// sseStream 把流水线进度写成 Server-Sent Events。
// 翻译 worker 会并发回调，写操作用锁串行化。
type sseStream struct {
	mu      sync.Mutex
	w       gin.ResponseWriter
	flusher http.Flusher
}

func newSSEStream(c *gin.Context) *sseStream {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	flusher, _ := c.Writer.(http.Flusher)
	return &sseStream{w: c.Writer, flusher: flusher}
}

func (s *sseStream) send(ev sseEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Write([]byte("data: "))
	s.w.Write(data)
	s.w.Write([]byte("\n\n"))
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// Status 实现 search.Notifier
func (s *sseStream) Status(message string, progress int) {
	s.send(sseEvent{Type: "status", Message: message, Progress: progress})
}

// PaperDone 实现 search.Notifier，进度按 30 + 60*current/total 折算
func (s *sseStream) PaperDone(current, total int, title string) {
	progress := 30
	if total > 0 {
		progress = 30 + 60*current/total
	}
	s.send(sseEvent{Type: "progress", Current: current, Total: total, Title: truncateRunes(title, 50), Progress: progress})
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func (s *sseStream) Complete(result interface{}) {
	s.send(sseEvent{Type: "complete", Progress: 100, Result: result})
}

func (s *sseStream) Error(message string) {
	s.send(sseEvent{Type: "error", Message: message})
}

package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rosterlens/internal/logger"
)

// RequestIDHeader 请求 ID 头；客户端未提供时生成 uuid
const RequestIDHeader = "X-Request-ID"

// RequestID 为每个请求分配 ID，写入响应头和请求 ctx
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequest(c.Request.Context(), id))
		c.Next()
	}
}

// AccessLog 访问日志
func AccessLog(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}
		ev.Str("request_id", logger.RequestID(c.Request.Context())).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("http")
	}
}

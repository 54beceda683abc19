package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDHeader 请求ID响应头
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Logger 请求日志中间件
//
// 教学要点：
// 1. 为每个请求生成请求ID（客户端已带X-Request-ID时沿用）
// 2. 请求结束后输出一条结构化日志（方法、路径、状态码、耗时）
// 3. 4xx记为Warn，5xx记为Error
// 4. SSE长连接（/events）只在断开时记录一次
func Logger(logger *zap.Logger, slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := []zapcore.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("http request", fields...)
		case status >= 400:
			logger.Warn("http request", fields...)
		case slow > 0 && latency > slow && c.FullPath() != "/api/v1/events":
			logger.Warn("slow http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}

// GetRequestID 读取请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

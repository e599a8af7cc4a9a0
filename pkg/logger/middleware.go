package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader 请求ID请求头
	RequestIDHeader = "X-Request-ID"
	// ContextRequestIDKey 请求ID在gin.Context中的键名
	ContextRequestIDKey = "request_id"
)

// RequestIDMiddleware 为每个请求分配请求ID（客户端已携带时沿用）
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID 从gin.Context中获取请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestIDKey)
}

// RequestLogger 请求日志中间件，按状态码选择日志级别
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		l := WithFields(map[string]interface{}{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
			"status":     status,
			"latency":    latency.String(),
			"user_agent": c.Request.UserAgent(),
		})
		if len(c.Errors) > 0 {
			l = l.With(zap.String("error", c.Errors.String()))
		}

		switch {
		case status >= 500:
			l.Error("HTTP请求错误")
		case status >= 400:
			l.Warn("HTTP请求警告")
		default:
			l.Info("HTTP请求成功")
		}
	}
}

// ErrorLoggerMiddleware 错误日志中间件（panic恢复）
func ErrorLoggerMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		Error("HTTP请求发生panic",
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.String("error", fmt.Sprint(recovered)),
		)
		c.AbortWithStatus(500)
	})
}

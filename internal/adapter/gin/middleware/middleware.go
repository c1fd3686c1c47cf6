// Package middleware holds the gin middlewares shared by every route.
package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitspace-backend/pkg/logger"
	"fitspace-backend/pkg/metrics"
	"fitspace-backend/pkg/response"
)

// CORS headers sent on every response.
const (
	AllowOrigin  = "*"
	AllowHeaders = "Content-Type,Authorization,X-Amz-Date,X-Api-Key,X-Amz-Security-Token,X-Request-ID"
	AllowMethods = "GET,POST,PUT,DELETE,OPTIONS,PATCH"
)

// CORS adds the CORS headers and answers preflight requests without reaching
// a handler or the database.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", AllowOrigin)
		c.Header("Access-Control-Allow-Headers", AllowHeaders)
		c.Header("Access-Control-Allow-Methods", AllowMethods)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"message": "CORS preflight"})
			return
		}

		c.Next()
	}
}

// Recovery turns a panic into a 500 envelope. The panic value is logged, not returned.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.WithContext(c.Request.Context(), log).Error("panic recovered",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("reason", rec),
					zap.Stack("stack"),
				)
				response.AbortWithError(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}

// Logger writes one access log line per request.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		l := logger.WithContext(c.Request.Context(), log)
		switch {
		case status >= http.StatusInternalServerError:
			l.Error("http request", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("http request", fields...)
		default:
			l.Info("http request", fields...)
		}
	}
}

// Metrics records request count and latency per route template. Unmatched
// paths share one label so random URLs cannot grow the series set.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		m.ObserveRequest(c.Request.Method, route(c), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func route(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

// NotFound is the NoRoute/NoMethod handler.
func NotFound(c *gin.Context) {
	response.Error(c, http.StatusNotFound, fmt.Sprintf("Route not found: %s %s", c.Request.Method, c.Request.URL.Path))
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLogger returns the request-scoped logger set by middleware.RequestLogger,
// or fallback when the route runs without it.
func requestLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return fallback
}

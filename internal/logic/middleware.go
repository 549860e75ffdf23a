package logic

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"journal-backend/internal/db"
)

const ctxUnitOfWork = "unitOfWork"

// RequestLogger logs every request with zap once the handler chain returns.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("request completed", fields...)
		case logger.Core().Enabled(zapcore.DebugLevel):
			logger.Debug("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}

// withUnitOfWork gives each request its own database session and releases
// it when the chain returns, panics included.
func withUnitOfWork(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uow := db.Begin(c.Request.Context(), conn)
		defer uow.Close()

		c.Set(ctxUnitOfWork, uow.DB())
		c.Next()
	}
}

func unitOfWork(c *gin.Context) *gorm.DB {
	return c.MustGet(ctxUnitOfWork).(*gorm.DB)
}

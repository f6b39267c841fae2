package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"task_practice_bot/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter returns an engine with recovery, request logging, /healthz and /metrics.
// Callers mount their own routes on it.
func NewRouter(m *metrics.Metrics, logger *logrus.Entry) *gin.Engine {
	r := gin.New()
	r.Use(recovery(logger), requestLogger(logger), m.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))
	return r
}

// recovery turns a panic into the JSON error body the webhook contract expects.
func recovery(logger *logrus.Entry) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"panic":  rec,
		}).Error("Recovered from panic in HTTP handler")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": fmt.Sprint(rec),
		})
	})
}

func requestLogger(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("HTTP request handled")
	}
}

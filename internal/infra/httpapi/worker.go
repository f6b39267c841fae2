package httpapi

import (
	"context"
	"net/http"

	"task_practice_bot/internal/app"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BatchRunner runs one grading batch.
type BatchRunner interface {
	Run(ctx context.Context) (app.BatchResult, error)
}

// RunHandler lets an external timer trigger a grading batch.
type RunHandler struct {
	runner BatchRunner
	logger *logrus.Entry
}

func NewRunHandler(runner BatchRunner, logger *logrus.Entry) *RunHandler {
	return &RunHandler{runner: runner, logger: logger}
}

func (h *RunHandler) Register(r gin.IRoutes) {
	r.POST("/run", h.Handle)
	r.GET("/run", h.Handle)
}

func (h *RunHandler) Handle(c *gin.Context) {
	result, err := h.runner.Run(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Triggered batch failed")
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.String(http.StatusOK, result.Summary())
}

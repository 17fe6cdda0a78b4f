package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/queue"
)

// QueueStatter 队列统计
type QueueStatter interface {
	Stats(ctx context.Context) (queue.Stats, error)
}

// QueueHandler 异步任务队列积压与死信数量
type QueueHandler struct {
	queue  QueueStatter
	logger *logrus.Logger
}

func NewQueueHandler(q QueueStatter, logger *logrus.Logger) *QueueHandler {
	return &QueueHandler{queue: q, logger: logger}
}

// Stats GET /api/admin/queue
func (h *QueueHandler) Stats(c *gin.Context) {
	st, err := h.queue.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "queue_stats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

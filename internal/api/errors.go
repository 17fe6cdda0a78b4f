package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/repository"
	"github.com/ugobe007/pythh-sub016/internal/service"
)

// writeError 领域错误 → HTTP 状态码；未识别的错误一律 500
func writeError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUnresolvable), errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrNoUnlocksLeft):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.WithError(err).WithField("op", op).Error("请求处理失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

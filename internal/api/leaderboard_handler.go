package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/repository"
	"github.com/ugobe007/pythh-sub016/internal/service"
)

// LeaderboardReader service.LeaderboardService 的接口
type LeaderboardReader interface {
	List(ctx context.Context, filter repository.LeaderboardFilter, page, pageSize int) (*service.LeaderboardView, error)
}

// LeaderboardHandler 初创公司排行榜
type LeaderboardHandler struct {
	leaderboard LeaderboardReader
	logger      *logrus.Logger
}

func NewLeaderboardHandler(leaderboard LeaderboardReader, logger *logrus.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard, logger: logger}
}

// List GET /api/leaderboard?sector=fintech&stage=seed&page=1&page_size=20
func (h *LeaderboardHandler) List(c *gin.Context) {
	filter := repository.LeaderboardFilter{Sector: c.Query("sector")}
	if stage := c.Query("stage"); stage != "" {
		idx := model.StageIndex(stage)
		if idx < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stage"})
			return
		}
		filter.Stage = &idx
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	view, err := h.leaderboard.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		writeError(c, h.logger, "leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/service"
)

// MatchReader service.MatchService 的接口
type MatchReader interface {
	Radar(ctx context.Context, startupID string) (*service.RadarView, error)
	TopMatches(ctx context.Context, startupID string) (*service.TopMatchesView, error)
	Why(ctx context.Context, startupID, investorID string) (*service.WhyView, error)
	Unlock(ctx context.Context, startupID, investorID string) (*service.UnlockResult, error)
}

// MatchHandler 雷达表 / top matches / 匹配详情 / 解锁
type MatchHandler struct {
	matches MatchReader
	logger  *logrus.Logger
}

func NewMatchHandler(matches MatchReader, logger *logrus.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, logger: logger}
}

// Radar GET /api/startups/:id/radar
func (h *MatchHandler) Radar(c *gin.Context) {
	view, err := h.matches.Radar(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "radar", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// TopMatches GET /api/startups/:id/top-matches
func (h *MatchHandler) TopMatches(c *gin.Context) {
	view, err := h.matches.TopMatches(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "top_matches", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Why GET /api/startups/:id/matches/:investor_id/why
func (h *MatchHandler) Why(c *gin.Context) {
	view, err := h.matches.Why(c.Request.Context(), c.Param("id"), c.Param("investor_id"))
	if err != nil {
		writeError(c, h.logger, "why", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Unlock POST /api/startups/:id/matches/:investor_id/unlock
func (h *MatchHandler) Unlock(c *gin.Context) {
	res, err := h.matches.Unlock(c.Request.Context(), c.Param("id"), c.Param("investor_id"))
	if err != nil {
		writeError(c, h.logger, "unlock", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/repository"
	"github.com/ugobe007/pythh-sub016/internal/service"
)

// FeedReader service.FeedService 的接口
type FeedReader interface {
	Live(ctx context.Context, filter repository.FeedFilter, limit int) (*service.LiveView, error)
	Signals(ctx context.Context, filter repository.FeedFilter, limit int) (*service.SignalsView, error)
}

// FeedHandler 实时信号流 / 信号列表
type FeedHandler struct {
	feed   FeedReader
	logger *logrus.Logger
}

func NewFeedHandler(feed FeedReader, logger *logrus.Logger) *FeedHandler {
	return &FeedHandler{feed: feed, logger: logger}
}

// Live GET /api/feed/live?startup_id=&kind=&since=<unix ms>&limit=50
func (h *FeedHandler) Live(c *gin.Context) {
	filter, limit := feedQuery(c)
	view, err := h.feed.Live(c.Request.Context(), filter, limit)
	if err != nil {
		writeError(c, h.logger, "feed_live", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Signals GET /api/signals?startup_id=&kind=&since=<unix ms>&limit=50
func (h *FeedHandler) Signals(c *gin.Context) {
	filter, limit := feedQuery(c)
	view, err := h.feed.Signals(c.Request.Context(), filter, limit)
	if err != nil {
		writeError(c, h.logger, "signals", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func feedQuery(c *gin.Context) (repository.FeedFilter, int) {
	filter := repository.FeedFilter{
		StartupID: c.Query("startup_id"),
		Kind:      c.Query("kind"),
	}
	if ms, err := strconv.ParseInt(c.Query("since"), 10, 64); err == nil && ms > 0 {
		since := time.UnixMilli(ms)
		filter.Since = &since
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	return filter, limit
}
